package grapheme

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	n := 0
	for g.Next() {
		n++
	}
	return n
}

// FirstLen returns the byte length of the first grapheme cluster in b.
// Invalid UTF-8 counts as a one-byte cluster.
func FirstLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	if r, size := utf8.DecodeRune(b); r == utf8.RuneError && size <= 1 {
		return 1
	}
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(b, -1)
	if len(cluster) == 0 {
		return 1
	}
	return len(cluster)
}

// LastStart returns the byte offset in b where its last grapheme cluster
// begins. b should start on a cluster boundary for an exact answer.
func LastStart(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	last := 0
	for off := 0; off < len(b); {
		last = off
		off += FirstLen(b[off:])
	}
	return last
}

// Width returns the terminal cell width of a single cluster (tabs excluded).
func Width(cluster string) int {
	w := runewidth.StringWidth(cluster)
	if w < 0 {
		w = 0
	}
	if w == 0 {
		if fallback := uniseg.StringWidth(cluster); fallback > w {
			w = fallback
		}
	}
	return w
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsPunct reports whether all runes in cluster are Unicode punctuation.
func IsPunct(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}
