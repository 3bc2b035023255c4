package view

import (
	"sort"
	"strings"

	"github.com/iw2rmb/loom/buffer"
)

// LineStart records why a display line begins where it does.
type LineStart uint8

const (
	// StartSource follows a source newline or begins the layout.
	StartSource LineStart = iota
	// StartAfterSynthetic follows a synthetic newline or a break.
	StartAfterSynthetic
	// StartWrapped continues the previous line after a soft wrap.
	StartWrapped
)

func (k LineStart) String() string {
	switch k {
	case StartSource:
		return "source"
	case StartAfterSynthetic:
		return "after-synthetic"
	default:
		return "wrapped"
	}
}

// Char is one grapheme cluster on a display line. An expanded tab is
// several single-cell space chars sharing the tab's source byte.
type Char struct {
	Text   string
	Source int64
	Style  StyleKey
	Width  int

	srcEnd int64
}

type DisplayLine struct {
	Chars []Char
	Start LineStart

	// LineNumber is the 1-based source line number shown in a gutter, or
	// 0 for continuation, synthetic and unnumbered lines.
	LineNumber int64

	// End is the byte a cursor placed past the last char lands on: the
	// line's newline, the document end, or the last char of a wrapped
	// line. -1 when the line has no source.
	End int64
}

func (l DisplayLine) Text() string {
	var sb strings.Builder
	for _, c := range l.Chars {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Width returns the line width in cells.
func (l DisplayLine) Width() int {
	w := 0
	for _, c := range l.Chars {
		w += c.Width
	}
	return w
}

// Sourced reports whether any position on the line maps to source.
func (l DisplayLine) Sourced() bool {
	return l.firstSource() >= 0
}

func (l DisplayLine) firstSource() int64 {
	for _, c := range l.Chars {
		if c.Source >= 0 {
			return c.Source
		}
	}
	return l.End
}

// Mappings returns the source offset of every char, NoSource for synthetic ones.
func (l DisplayLine) Mappings() []int64 {
	out := make([]int64, len(l.Chars))
	for i, c := range l.Chars {
		out[i] = c.Source
	}
	return out
}

// ByteAt returns the source byte for cell column col. A synthetic cell
// resolves to the next sourced char on the line, then to End.
func (l DisplayLine) ByteAt(col int) (int64, bool) {
	acc := 0
	for i, c := range l.Chars {
		if col < acc+c.Width {
			if c.Source >= 0 {
				return c.Source, true
			}
			for _, n := range l.Chars[i+1:] {
				if n.Source >= 0 {
					return n.Source, true
				}
			}
			break
		}
		acc += c.Width
	}
	if l.End >= 0 {
		return l.End, true
	}
	for i := len(l.Chars) - 1; i >= 0; i-- {
		if l.Chars[i].Source >= 0 {
			return l.Chars[i].Source, true
		}
	}
	return NoSource, false
}

// ColumnOf returns the cell column where off is displayed on this line.
// Offsets past the last char map to the end of the line.
func (l DisplayLine) ColumnOf(off int64) int {
	acc := 0
	best, bestEnd, prev := -1, int64(-1), int64(-1)
	for _, c := range l.Chars {
		if c.Source >= 0 {
			if c.Source == off {
				return acc
			}
			if c.Source > off {
				break
			}
			if c.Source != prev {
				best, bestEnd = acc, c.Source+int64(len(c.Text))
			}
			prev = c.Source
		}
		acc += c.Width
	}
	if best >= 0 && off < bestEnd {
		return best
	}
	return acc
}

// Crop returns the part of l visible in cells [left, left+width). Wide
// chars cut by either edge become spaces.
func (l DisplayLine) Crop(left, width int) DisplayLine {
	if left <= 0 && (width < 0 || l.Width() <= width) {
		return l
	}
	out := l
	out.Chars = make([]Char, 0, width)
	right := left + width
	acc := 0
	for _, c := range l.Chars {
		start, end := acc, acc+c.Width
		acc = end
		if end <= left || start >= right {
			continue
		}
		if start >= left && end <= right {
			out.Chars = append(out.Chars, c)
			continue
		}
		for x := maxInt(start, left); x < minInt(end, right); x++ {
			out.Chars = append(out.Chars, Char{Text: " ", Source: c.Source, Style: c.Style, Width: 1})
		}
	}
	return out
}

type lineIndexEntry struct {
	first int64
	line  int
}

// Layout is the display of a contiguous source range. It is rebuilt,
// never mutated, when content or transform output changes.
type Layout struct {
	Lines       []DisplayLine
	SourceRange buffer.ByteRange

	// FirstViewLine is the document-wide view line of Lines[0]. It is
	// exact when the range starts at 0, estimated otherwise.
	FirstViewLine int64

	TotalViewLines     int64
	TotalInjectedLines int64
	// Exact reports whether the totals are known rather than estimated.
	Exact bool

	Version uint64

	docLen int64
	index  []lineIndexEntry
}

func (l *Layout) buildIndex() {
	l.index = l.index[:0]
	for i, dl := range l.Lines {
		if first := dl.firstSource(); first >= 0 {
			l.index = append(l.index, lineIndexEntry{first: first, line: i})
		}
	}
}

// Covers reports whether off is displayed by this layout.
func (l *Layout) Covers(off int64) bool {
	if l == nil || len(l.index) == 0 {
		return false
	}
	if off < l.SourceRange.Start {
		return false
	}
	return off < l.SourceRange.End || (off == l.SourceRange.End && l.SourceRange.End == l.docLen)
}

// LineForByte returns the index into Lines of the line displaying off,
// or of the nearest sourced line when off is not covered.
func (l *Layout) LineForByte(off int64) (int, bool) {
	if len(l.index) == 0 {
		return 0, false
	}
	i := sort.Search(len(l.index), func(i int) bool { return l.index[i].first > off }) - 1
	if i < 0 {
		return l.index[0].line, false
	}
	for i > 0 && l.index[i-1].first == l.index[i].first {
		i--
	}
	return l.index[i].line, l.Covers(off)
}

// LastViewLine returns the view line after the last line of the layout.
func (l *Layout) LastViewLine() int64 {
	return l.FirstViewLine + int64(len(l.Lines))
}

// ReachesEnd reports whether the layout includes the document end.
func (l *Layout) ReachesEnd() bool { return l.SourceRange.End >= l.docLen }

// ReachesStart reports whether the layout includes the document start.
func (l *Layout) ReachesStart() bool { return l.SourceRange.Start == 0 }

func (l *Layout) bytesPerViewLine() float64 {
	if len(l.Lines) == 0 || l.SourceRange.IsEmpty() {
		return defaultBytesPerLine
	}
	avg := float64(l.SourceRange.Len()) / float64(len(l.Lines))
	if avg < 1 {
		return 1
	}
	return avg
}
