// Package lipgloss provides terminal rendering of deltas using the Lipgloss
// styling library.
package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.Theme = (*Theme)(nil)

// Theme implements pagewatch.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles pagewatch.Styles
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() pagewatch.Styles {
	return t.styles
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeFor returns the theme matching the background of the renderer's
// terminal.
func ThemeFor(r *lipgloss.Renderer) *Theme {
	if r.HasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: pagewatch.Styles{
			Matched: pagewatch.ColorPair{
				Foreground: "#cdd6f4", // Near white
			},
			Added: pagewatch.ColorPair{
				Foreground: "#a6e3a1", // Green
				Background: "#004000", // Very dark green
			},
			Removed: pagewatch.ColorPair{
				Foreground: "#6c7086", // Muted gray, struck through
			},
			Header: pagewatch.ColorPair{
				Foreground: "#f9e2af", // Yellow
				Background: "#313244", // Dark surface
			},
			Muted: pagewatch.ColorPair{
				Foreground: "#6c7086",
			},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: pagewatch.Styles{
			Matched: pagewatch.ColorPair{
				Foreground: "#4c4f69", // Near black
			},
			Added: pagewatch.ColorPair{
				Foreground: "#40a02b", // Green
				Background: "#d4f4d4", // Subtle green background
			},
			Removed: pagewatch.ColorPair{
				Foreground: "#9ca0b0", // Muted gray, struck through
			},
			Header: pagewatch.ColorPair{
				Foreground: "#df8e1d", // Yellow
				Background: "#e6e9ef", // Light surface
			},
			Muted: pagewatch.ColorPair{
				Foreground: "#9ca0b0",
			},
		},
	}
}
