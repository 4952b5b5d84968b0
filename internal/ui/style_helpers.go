package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bgStyle paints a fixed background under every segment of a bar. Lipgloss
// resets the background after each styled run, so spaces between runs must
// be styled too.
type bgStyle struct {
	bg    lipgloss.Color
	space string
}

func newBgStyle(color string) bgStyle {
	bg := lipgloss.Color(color)
	return bgStyle{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// Render styles text word by word and joins the words with painted spaces.
func (b bgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

func (b bgStyle) Space() string { return b.space }

func (b bgStyle) Spaces(n int) string { return strings.Repeat(b.space, max(n, 0)) }

// Join joins rendered parts with a painted separator.
func (b bgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}

// FillLine pads rendered content to width on the background color.
func (b bgStyle) FillLine(content string, width int) string {
	return lipgloss.NewStyle().Background(b.bg).Width(width).Render(content)
}
