package view

type TokenKind uint8

const (
	// TokenText is a run of characters other than whitespace and newlines.
	TokenText TokenKind = iota
	// TokenNewline ends a line. "\r\n" is one token.
	TokenNewline
	// TokenSpace is a single space or tab.
	TokenSpace
	// TokenBreak forces a display line break without consuming source.
	TokenBreak
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenNewline:
		return "newline"
	case TokenSpace:
		return "space"
	case TokenBreak:
		return "break"
	default:
		return "unknown"
	}
}

// NoSource marks synthetic content with no originating byte.
const NoSource int64 = -1

// StyleKey names a style; resolving it to colours is the renderer's job.
type StyleKey string

type Token struct {
	Kind TokenKind
	Text string

	// Source is the byte offset of the first byte of Text, or NoSource.
	Source int64

	// Style overrides highlighting for this token when non-empty.
	Style StyleKey

	// Priority decides between transform tokens claiming overlapping
	// source bytes. Higher wins; on a tie the earlier token wins.
	Priority int

	// span is the source length when it differs from len(Text).
	span int64
}

func (t Token) Synthetic() bool { return t.Source < 0 }

// sourceEnd is the offset just past the bytes t covers.
func (t Token) sourceEnd() int64 {
	if t.Source < 0 {
		return NoSource
	}
	if t.Kind == TokenBreak {
		return t.Source
	}
	if t.span > 0 {
		return t.Source + t.span
	}
	return t.Source + int64(len(t.Text))
}

// Synthetic returns a synthetic text token.
func Synthetic(text string, style StyleKey) Token {
	return Token{Kind: TokenText, Text: text, Source: NoSource, Style: style}
}

// SyntheticLine returns tokens for an injected line: text then a
// synthetic newline.
func SyntheticLine(text string, style StyleKey) []Token {
	out := make([]Token, 0, 2)
	if text != "" {
		out = append(out, Synthetic(text, style))
	}
	return append(out, Token{Kind: TokenNewline, Text: "\n", Source: NoSource})
}
