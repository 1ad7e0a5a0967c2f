package pagewatch

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for all visual elements of a rendered delta.
type Styles struct {
	Matched ColorPair // Style for text common to both versions
	Added   ColorPair // Style for text present only in the new version
	Removed ColorPair // Style for text present only in the old version (struck through)
	Header  ColorPair // Style for status labels and task names
	Muted   ColorPair // Style for secondary information such as timestamps
}

// Theme provides styles for rendering deltas.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
}
