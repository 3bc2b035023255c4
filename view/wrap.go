package view

import "github.com/iw2rmb/loom/internal/grapheme"

// wrappedSegment is a run of chars [start, end) placed on one display line.
type wrappedSegment struct {
	start int
	end   int
}

type wrapUnit struct {
	width int
	// tab units take their width from the column they land on.
	tab bool

	isWhitespace bool
	isPunct      bool
}

func wrapSegments(chars []Char, mode WrapMode, width int) []wrappedSegment {
	if width <= 0 || mode == WrapNone || len(chars) == 0 {
		return []wrappedSegment{{start: 0, end: len(chars)}}
	}

	units := wrapUnitsFromChars(chars)
	segments := make([]wrappedSegment, 0, 1+len(units)/maxInt(width, 1))
	for start := 0; start < len(units); {
		used := 0
		overflow := start
		for overflow < len(units) {
			w := maxInt(units[overflow].width, 1)
			if units[overflow].tab {
				w = tabCells(used, width)
			}
			if used > 0 && used+w > width {
				break
			}
			used += w
			overflow++
		}

		if overflow <= start {
			overflow = minInt(start+1, len(units))
		}

		end := overflow
		if mode == WrapWord && overflow < len(units) {
			if br, ok := findWordWrapBreak(units, start, overflow); ok {
				end = br
			} else {
				end = adjustBreakForLeadingPunctuation(units, start, overflow)
			}
		}
		if end <= start {
			end = minInt(start+1, len(units))
		}

		segments = append(segments, wrappedSegment{start: start, end: end})
		start = end
	}
	return segments
}

func wrapUnitsFromChars(chars []Char) []wrapUnit {
	units := make([]wrapUnit, len(chars))
	for i, c := range chars {
		isWhitespace := grapheme.IsSpace(c.Text)
		units[i] = wrapUnit{
			width:        c.Width,
			tab:          c.Text == "\t",
			isWhitespace: isWhitespace,
			isPunct:      !isWhitespace && grapheme.IsPunct(c.Text),
		}
	}
	return units
}
