package buffer

import (
	"bytes"
	"sort"
)

// LineIndex records the offsets of '\n' bytes in one underlying buffer.
// Line i (i > 0) of that buffer starts at newlines[i-1]+1; offsets are
// strictly increasing.
type LineIndex struct {
	newlines []int64
}

func buildLineIndex(data []byte) *LineIndex {
	ix := &LineIndex{newlines: make([]int64, 0, bytes.Count(data, []byte{'\n'}))}
	ix.appendFrom(data, 0)
	return ix
}

// appendFrom records the newlines of data, which starts at base.
func (ix *LineIndex) appendFrom(data []byte, base int64) {
	off := 0
	for {
		i := bytes.IndexByte(data[off:], '\n')
		if i < 0 {
			return
		}
		ix.newlines = append(ix.newlines, base+int64(off+i))
		off += i + 1
	}
}

// lowerBound returns the index of the first newline at or after off.
func (ix *LineIndex) lowerBound(off int64) int {
	return sort.Search(len(ix.newlines), func(i int) bool { return ix.newlines[i] >= off })
}

// countIn returns the number of newlines in [start, end).
func (ix *LineIndex) countIn(start, end int64) int64 {
	if end <= start {
		return 0
	}
	return int64(ix.lowerBound(end) - ix.lowerBound(start))
}

// nth returns the offset of the k-th (1-based) newline at or after start.
func (ix *LineIndex) nth(start int64, k int64) int64 {
	i := ix.lowerBound(start) + int(k) - 1
	if i < 0 || i >= len(ix.newlines) {
		return -1
	}
	return ix.newlines[i]
}

// Len returns the number of newlines recorded.
func (ix *LineIndex) Len() int { return len(ix.newlines) }
