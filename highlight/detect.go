package highlight

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// sniffLen bounds the content sample handed to language detection.
const sniffLen = 16 << 10

// Detect guesses the language of a file from its name and the start of
// its content. It returns "" for binary content and when nothing matches.
func Detect(filename string, sample []byte) string {
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}
	if len(sample) > 0 && enry.IsBinary(sample) {
		return ""
	}
	if lang := enry.GetLanguage(filepath.Base(filename), sample); lang != "" {
		return lang
	}
	if l := lexers.Match(filepath.Base(filename)); l != nil {
		return l.Config().Name
	}
	return ""
}

// lexerFor returns a coalescing lexer for lang, falling back to content
// analysis and then to plain text.
func lexerFor(lang string, sample []byte) chroma.Lexer {
	var l chroma.Lexer
	if lang != "" {
		l = lexers.Get(lang)
	}
	if l == nil && len(sample) > 0 {
		l = lexers.Analyse(string(sample))
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}
