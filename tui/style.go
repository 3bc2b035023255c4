package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/loom/view"
)

// Style controls the component's rendering.
type Style struct {
	Gutter        lipgloss.Style
	LineNum       lipgloss.Style
	LineNumActive lipgloss.Style

	Text      lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style

	// Virtual styles transform-injected text that carries no style key.
	Virtual lipgloss.Style
}

// DefaultStyle returns the styles the bundled hosts use. A zero Config.Style
// renders plain text with an invisible cursor.
func DefaultStyle() Style {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		Gutter:        gutter,
		LineNum:       gutter,
		LineNumActive: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Text:          lipgloss.NewStyle(),
		Selection:     lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Virtual:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	}
}

// StyleForKey resolves style keys carried by display chars, such as
// highlight.Theme.Style.
type StyleForKey func(view.StyleKey) lipgloss.Style
