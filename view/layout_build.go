package view

import (
	"fmt"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/internal/grapheme"
)

// TabStop is the tab stop width in cells.
const TabStop = 8

type LayoutOptions struct {
	Range  buffer.ByteRange
	DocLen int64

	// Width is the wrap width in cells; 0 disables wrapping.
	Width int
	Wrap  WrapMode

	// FirstLineNumber is the 1-based number of the source line containing
	// Range.Start, or 0 when unknown (no line numbers are assigned).
	FirstLineNumber int64
	// AtLineStart reports whether Range.Start begins a source line.
	AtLineStart bool

	Highlights []HighlightSpan
	Version    uint64
}

// BuildLayout lays out tokens covering opt.Range.
func BuildLayout(tokens []Token, opt LayoutOptions) *Layout {
	lay := &Layout{SourceRange: opt.Range, docLen: opt.DocLen, Version: opt.Version}
	b := layoutBuilder{
		opt:     opt,
		styles:  flattenHighlightSpans(opt.Highlights, opt.Range),
		lay:     lay,
		start:   StartSource,
		lineNo:  opt.FirstLineNumber,
		pending: opt.AtLineStart,
	}
	for _, t := range tokens {
		b.add(t)
	}
	b.finish()
	lay.buildIndex()
	return lay
}

type layoutBuilder struct {
	opt    LayoutOptions
	styles styleSpans
	lay    *Layout

	chars []Char
	start LineStart

	lineNo  int64
	pending bool

	sawToken      bool
	sourceNewline bool // last token was a source newline
}

func (b *layoutBuilder) add(t Token) {
	b.sawToken = true
	b.sourceNewline = false
	switch t.Kind {
	case TokenNewline:
		if t.Source >= 0 {
			b.flush(t.Source)
			b.start = StartSource
			if b.lineNo > 0 {
				b.lineNo++
			}
			b.pending = true
			b.sourceNewline = true
			return
		}
		b.flush(NoSource)
		b.start = StartAfterSynthetic
	case TokenBreak:
		b.flush(NoSource)
		b.start = StartAfterSynthetic
	default:
		b.appendText(t)
	}
}

func (b *layoutBuilder) appendText(t Token) {
	style := func(src int64) StyleKey {
		if t.Style != "" || src < 0 {
			return t.Style
		}
		return b.styles.at(src)
	}

	var off int64
	for _, g := range grapheme.Split(t.Text) {
		src, end := NoSource, int64(NoSource)
		if t.Source >= 0 {
			src, end = t.Source+off, t.Source+off+int64(len(g))
			if t.span > 0 {
				src, end = t.Source, t.sourceEnd()
			}
		}
		off += int64(len(g))
		if g == "\t" {
			// Expanded per display line in flush, once wrapping has
			// decided which line the tab lands on.
			b.chars = append(b.chars, Char{Text: g, Source: src, Style: style(src), srcEnd: end})
			continue
		}
		w := grapheme.Width(g)
		if w < 1 {
			w = 1
		}
		b.chars = append(b.chars, Char{Text: g, Source: src, Style: style(src), Width: w, srcEnd: end})
	}
}

// flush ends the current logical line. newline is the source offset of
// its terminator, or NoSource.
func (b *layoutBuilder) flush(newline int64) {
	limit := 0
	if b.opt.Wrap != WrapNone {
		limit = b.opt.Width
	}
	segs := wrapSegments(b.chars, b.opt.Wrap, b.opt.Width)
	for i, seg := range segs {
		chars := expandTabs(b.chars[seg.start:seg.end], limit)
		dl := DisplayLine{Chars: chars, Start: b.start, End: NoSource}
		last := i == len(segs)-1
		if i > 0 {
			dl.Start = StartWrapped
		}
		switch {
		case !last:
			dl.End = lastSource(chars)
		case newline >= 0:
			dl.End = newline
		default:
			dl.End = lastSourceEnd(chars)
		}
		if dl.Start != StartWrapped && b.pending && dl.Sourced() {
			dl.LineNumber = b.lineNo
			b.pending = false
		}
		b.lay.Lines = append(b.lay.Lines, dl)
	}
	b.chars = nil
}

func (b *layoutBuilder) finish() {
	atEnd := b.opt.Range.End >= b.opt.DocLen
	switch {
	case len(b.chars) > 0:
		b.flush(NoSource)
	case atEnd && (!b.sawToken || b.sourceNewline):
		b.flush(b.opt.DocLen)
	}
}

func lastSource(chars []Char) int64 {
	for i := len(chars) - 1; i >= 0; i-- {
		if chars[i].Source >= 0 {
			return chars[i].Source
		}
	}
	return NoSource
}

func lastSourceEnd(chars []Char) int64 {
	for i := len(chars) - 1; i >= 0; i-- {
		if chars[i].Source >= 0 {
			return chars[i].srcEnd
		}
	}
	return NoSource
}

// tabCells is the advance of a tab at display column col. A tab at the
// start of a line narrower than one stop is cut to the line width.
func tabCells(col, limit int) int {
	n := TabStop - col%TabStop
	if col == 0 && limit > 0 && n > limit {
		return limit
	}
	return n
}

// expandTabs replaces tab placeholders by single-cell spaces that all map
// to the tab byte. Columns count from the start of chars.
func expandTabs(chars []Char, limit int) []Char {
	tabs := 0
	for _, c := range chars {
		if c.Text == "\t" {
			tabs++
		}
	}
	if tabs == 0 {
		return chars
	}
	out := make([]Char, 0, len(chars)+tabs*(TabStop-1))
	col := 0
	for _, c := range chars {
		if c.Text != "\t" {
			out = append(out, c)
			col += c.Width
			continue
		}
		n := tabCells(col, limit)
		for i := 0; i < n; i++ {
			out = append(out, Char{Text: " ", Source: c.Source, Style: c.Style, Width: 1, srcEnd: c.srcEnd})
		}
		col += n
	}
	return out
}

// checkLayout verifies that source mappings never go backwards.
func checkLayout(l *Layout) error {
	prev := int64(-1)
	for i, dl := range l.Lines {
		for j, c := range dl.Chars {
			if c.Source < 0 {
				continue
			}
			if c.Source < prev {
				return fmt.Errorf("%w: line %d char %d maps to %d after %d", ErrLayoutInconsistency, i, j, c.Source, prev)
			}
			if c.Source < l.SourceRange.Start || c.Source >= l.SourceRange.End {
				return fmt.Errorf("%w: line %d char %d maps to %d outside %s", ErrLayoutInconsistency, i, j, c.Source, l.SourceRange)
			}
			prev = c.Source
		}
		if dl.End >= 0 {
			if dl.End < prev {
				return fmt.Errorf("%w: line %d ends at %d before %d", ErrLayoutInconsistency, i, dl.End, prev)
			}
		}
	}
	return nil
}
