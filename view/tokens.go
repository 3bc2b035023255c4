package view

import (
	"unicode/utf8"

	"github.com/iw2rmb/loom/buffer"
)

// BuildTokens tokenises the bytes of r. When the store returns a
// transient error, the tokens cover the bytes that were available and
// the error is returned alongside them.
//
// Bytes that are not valid UTF-8 become U+FFFD and C0 control bytes
// become their control pictures; each is its own single-character
// token so that its mapping stays exact.
func BuildTokens(s *buffer.Store, r buffer.ByteRange) ([]Token, error) {
	b, err := s.Read(r)
	if err != nil && !buffer.IsTransient(err) {
		return nil, err
	}
	return tokenize(b, r.Start), err
}

func tokenize(b []byte, base int64) []Token {
	out := make([]Token, 0, len(b)/4+1)
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && end > runStart {
			out = append(out, Token{Kind: TokenText, Text: string(b[runStart:end]), Source: base + int64(runStart)})
		}
		runStart = -1
	}

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '\n':
			flush(i)
			out = append(out, Token{Kind: TokenNewline, Text: "\n", Source: base + int64(i)})
			i++
		case c == '\r':
			flush(i)
			text := "\r"
			if i+1 < len(b) && b[i+1] == '\n' {
				text = "\r\n"
			}
			out = append(out, Token{Kind: TokenNewline, Text: text, Source: base + int64(i)})
			i += len(text)
		case c == ' ' || c == '\t':
			flush(i)
			out = append(out, Token{Kind: TokenSpace, Text: string(c), Source: base + int64(i)})
			i++
		case c < 0x20 || c == 0x7f:
			flush(i)
			out = append(out, Token{Kind: TokenText, Text: controlPicture(c), Source: base + int64(i), span: 1})
			i++
		default:
			r, size := utf8.DecodeRune(b[i:])
			if r == utf8.RuneError && size <= 1 {
				flush(i)
				out = append(out, Token{Kind: TokenText, Text: string(utf8.RuneError), Source: base + int64(i), span: 1})
				i++
				continue
			}
			if runStart < 0 {
				runStart = i
			}
			i += size
		}
	}
	flush(len(b))
	return out
}

func controlPicture(c byte) string {
	if c == 0x7f {
		return "\u2421"
	}
	return string(rune(0x2400 + int(c)))
}
