package view

import (
	"sort"

	"github.com/iw2rmb/loom/buffer"
)

// HighlightSpan styles a byte range of the source.
type HighlightSpan struct {
	Range    buffer.ByteRange
	Style    StyleKey
	Priority int
}

// Highlighter computes spans for a byte range. It must be a pure
// function of the document content; caching is its own concern.
type Highlighter interface {
	Spans(r buffer.ByteRange) []HighlightSpan
}

type HighlighterFunc func(r buffer.ByteRange) []HighlightSpan

func (f HighlighterFunc) Spans(r buffer.ByteRange) []HighlightSpan { return f(r) }

// styleSpans is a sorted, non-overlapping span list for lookups.
type styleSpans []HighlightSpan

// flattenHighlightSpans clips spans to r and resolves overlaps: the
// higher priority span wins each byte, and on a tie the span listed
// first wins.
func flattenHighlightSpans(spans []HighlightSpan, r buffer.ByteRange) styleSpans {
	if len(spans) == 0 {
		return nil
	}
	spans = append([]HighlightSpan(nil), spans...)
	order := make([]int, 0, len(spans))
	for i, sp := range spans {
		sp.Range = buffer.NormalizeRange(sp.Range)
		if sp.Range.Start < r.Start {
			sp.Range.Start = r.Start
		}
		if sp.Range.End > r.End {
			sp.Range.End = r.End
		}
		spans[i] = sp
		if sp.Range.IsEmpty() || sp.Style == "" {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return spans[order[a]].Priority > spans[order[b]].Priority
	})

	var out styleSpans
	for _, i := range order {
		out = out.paint(spans[i])
	}
	return out
}

// paint adds the parts of sp not already covered by out.
func (s styleSpans) paint(sp HighlightSpan) styleSpans {
	free := []buffer.ByteRange{sp.Range}
	for _, have := range s {
		var next []buffer.ByteRange
		for _, f := range free {
			if !f.Overlaps(have.Range) {
				next = append(next, f)
				continue
			}
			if f.Start < have.Range.Start {
				next = append(next, buffer.ByteRange{Start: f.Start, End: have.Range.Start})
			}
			if f.End > have.Range.End {
				next = append(next, buffer.ByteRange{Start: have.Range.End, End: f.End})
			}
		}
		free = next
		if len(free) == 0 {
			return s
		}
	}
	for _, f := range free {
		s = append(s, HighlightSpan{Range: f, Style: sp.Style, Priority: sp.Priority})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Range.Start < s[j].Range.Start })
	return s
}

// at returns the style covering off.
func (s styleSpans) at(off int64) StyleKey {
	i := sort.Search(len(s), func(i int) bool { return s[i].Range.End > off })
	if i < len(s) && s[i].Range.Contains(off) {
		return s[i].Style
	}
	return ""
}
