package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/loom/view"
)

const DefaultTheme = "monokai"

// Theme resolves style keys produced by Highlighter to lipgloss styles
// using a Chroma style. Keys it does not know resolve to extra styles
// registered with Set, then to the zero style.
type Theme struct {
	style  *chroma.Style
	types  map[view.StyleKey]chroma.TokenType
	extra  map[view.StyleKey]lipgloss.Style
	styles map[view.StyleKey]lipgloss.Style
}

// NewTheme loads the named Chroma style; unknown names fall back to
// Chroma's default style.
func NewTheme(name string) *Theme {
	if name == "" {
		name = DefaultTheme
	}
	types := make(map[view.StyleKey]chroma.TokenType, len(chroma.StandardTypes))
	for tt := range chroma.StandardTypes {
		types[StyleKey(tt)] = tt
	}
	return &Theme{
		style:  styles.Get(name),
		types:  types,
		extra:  make(map[view.StyleKey]lipgloss.Style),
		styles: make(map[view.StyleKey]lipgloss.Style),
	}
}

// Name returns the Chroma style name.
func (t *Theme) Name() string { return t.style.Name }

// Set registers a style for a key outside Chroma's token types, such as
// a transform's virtual text style.
func (t *Theme) Set(key view.StyleKey, st lipgloss.Style) {
	t.extra[key] = st
	delete(t.styles, key)
}

// Style returns the style for key.
func (t *Theme) Style(key view.StyleKey) lipgloss.Style {
	if st, ok := t.styles[key]; ok {
		return st
	}
	st, ok := t.extra[key]
	if !ok {
		st = lipgloss.NewStyle()
		if tt, known := t.types[key]; known {
			st = entryStyle(t.style.Get(tt))
		}
	}
	t.styles[key] = st
	return st
}

// Background returns the style's base background colour, if any.
func (t *Theme) Background() (lipgloss.Color, bool) {
	bg := t.style.Get(chroma.Background).Background
	if !bg.IsSet() {
		return "", false
	}
	return lipgloss.Color(bg.String()), true
}

func entryStyle(e chroma.StyleEntry) lipgloss.Style {
	st := lipgloss.NewStyle()
	if e.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(e.Colour.String()))
	}
	if e.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if e.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if e.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}
