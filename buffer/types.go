package buffer

import "fmt"

// ByteRange is a half-open span of byte offsets: [Start, End).
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Len() int64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r ByteRange) IsEmpty() bool { return r.End <= r.Start }

// Contains reports whether off lies inside r.
func (r ByteRange) Contains(off int64) bool {
	return off >= r.Start && off < r.End
}

// Overlaps reports whether r and o share at least one byte.
func (r ByteRange) Overlaps(o ByteRange) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

func NormalizeRange(r ByteRange) ByteRange {
	if r.Start <= r.End {
		return r
	}
	return ByteRange{Start: r.End, End: r.Start}
}

// LineEnding is the dominant line terminator of a source.
type LineEnding uint8

const (
	LineEndingLF LineEnding = iota
	LineEndingCRLF
	LineEndingCR
)

func (e LineEnding) String() string {
	switch e {
	case LineEndingCRLF:
		return "CRLF"
	case LineEndingCR:
		return "CR"
	default:
		return "LF"
	}
}

func clampInt64(v, min, max int64) int64 {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
