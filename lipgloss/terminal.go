package lipgloss

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/pagewatch"
	"github.com/muesli/termenv"
)

// Compile-time interface verification.
var _ pagewatch.Renderer = (*TerminalRenderer)(nil)

// TerminalRenderer renders a delta as one string with embedded terminal
// color codes.
type TerminalRenderer struct {
	renderer *lipgloss.Renderer
	theme    pagewatch.Theme
}

// NewTerminalRenderer creates a TerminalRenderer that colors output for the
// terminal behind r using theme.
func NewTerminalRenderer(r *lipgloss.Renderer, theme pagewatch.Theme) *TerminalRenderer {
	return &TerminalRenderer{renderer: r, theme: theme}
}

// Render interleaves matched, added and removed parts. Additions are green,
// removals are gray and struck through, and the trailing matched part is left
// unstyled. It returns pagewatch.ErrCapabilityUnavailable when the terminal
// cannot display colors.
//
// Page text must be emitted verbatim, and lipgloss pads multi-line blocks, so
// segments are painted with termenv.
func (t *TerminalRenderer) Render(d pagewatch.Delta) (string, error) {
	if err := d.Alignment.Validate(); err != nil {
		return "", err
	}
	profile := t.renderer.ColorProfile()
	if profile == termenv.Ascii {
		return "", fmt.Errorf("terminal renderer: %w", pagewatch.ErrCapabilityUnavailable)
	}

	styles := t.theme.Styles()
	a := d.Alignment
	var sb strings.Builder
	for i, m := range a.Matched {
		if i == len(a.ChangedNew) {
			sb.WriteString(m)
			break
		}
		sb.WriteString(paint(profile, m, styles.Matched, false))
		sb.WriteString(paint(profile, a.ChangedNew[i], styles.Added, false))
		sb.WriteString(paint(profile, a.ChangedOld[i], styles.Removed, true))
	}
	return sb.String(), nil
}

func paint(p termenv.Profile, s string, c pagewatch.ColorPair, strike bool) string {
	if s == "" {
		return ""
	}
	style := p.String(s)
	if c.Foreground != "" {
		style = style.Foreground(p.Color(c.Foreground))
	}
	if c.Background != "" {
		style = style.Background(p.Color(c.Background))
	}
	if strike {
		style = style.CrossOut()
	}
	return style.String()
}
