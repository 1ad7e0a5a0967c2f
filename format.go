package pagewatch

import (
	"fmt"
	"strings"
)

// Compile-time interface verification.
var _ Renderer = (*PlainTextRenderer)(nil)

// PlainTextRenderer renders each changed pair as a numbered block. Matched
// context is omitted.
type PlainTextRenderer struct{}

// Render renders the changes of d.Alignment as plain text.
func (r *PlainTextRenderer) Render(d Delta) (string, error) {
	if err := d.Alignment.Validate(); err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(d.Alignment.ChangedOld))
	for i, c := range d.Alignment.Changes() {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Change #%d\n", i+1))
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("Added:   '%s'\n", c.Added))
		sb.WriteString(fmt.Sprintf("Removed: '%s'\n", c.Removed))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n"), nil
}
