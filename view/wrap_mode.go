package view

import "fmt"

// WrapMode controls how long lines are displayed.
//
// WrapNone renders one source line per display line and relies on the
// viewport's LeftColumn for horizontal scrolling. WrapWord and
// WrapGrapheme produce Wrapped continuation lines.
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapWord
	WrapGrapheme
)

func (m WrapMode) String() string {
	switch m {
	case WrapNone:
		return "none"
	case WrapWord:
		return "word"
	case WrapGrapheme:
		return "grapheme"
	default:
		return fmt.Sprintf("WrapMode(%d)", int(m))
	}
}

// ParseWrapMode parses the names returned by WrapMode.String.
func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "none", "":
		return WrapNone, nil
	case "word":
		return WrapWord, nil
	case "grapheme", "char":
		return WrapGrapheme, nil
	}
	return WrapNone, fmt.Errorf("unknown wrap mode %q", s)
}
