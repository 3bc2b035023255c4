package buffer

import (
	"unicode/utf8"

	"github.com/iw2rmb/loom/internal/grapheme"
)

// maxClusterBytes bounds the bytes examined around an offset when
// looking for grapheme cluster boundaries.
const maxClusterBytes = 128

// NextGrapheme returns the end of the grapheme cluster starting at pos.
// CRLF counts as one cluster.
func (s *Store) NextGrapheme(pos int64) (int64, error) {
	if pos < 0 || pos > s.Len() {
		return pos, ErrOutOfRange
	}
	if pos == s.Len() {
		return pos, nil
	}
	b, err := s.Read(ByteRange{Start: pos, End: minInt64(s.Len(), pos+maxClusterBytes)})
	if len(b) == 0 {
		return pos, err
	}
	return pos + int64(grapheme.FirstLen(b)), nil
}

// PrevGrapheme returns the start of the grapheme cluster ending at pos.
func (s *Store) PrevGrapheme(pos int64) (int64, error) {
	if pos < 0 || pos > s.Len() {
		return pos, ErrOutOfRange
	}
	if pos == 0 {
		return 0, nil
	}
	start := maxInt64(0, pos-maxClusterBytes)
	b, err := s.Read(ByteRange{Start: start, End: pos})
	if err != nil {
		return pos, err
	}
	skip := 0
	for skip < len(b)-1 && !utf8.RuneStart(b[skip]) && start > 0 {
		skip++
	}
	return start + int64(skip+grapheme.LastStart(b[skip:])), nil
}

// Word boundary rules:
// - skip whitespace, then skip non-whitespace
// - a line terminator is a hard boundary; at one, the move steps over it

// NextWordBoundary returns the end of the next word after pos.
func (s *Store) NextWordBoundary(pos int64) (int64, error) {
	end, err := s.LineEndAfter(pos)
	if err != nil {
		return pos, err
	}
	if pos >= end {
		return s.NextGrapheme(pos)
	}
	b, err := s.Read(ByteRange{Start: pos, End: end})
	if err != nil {
		return pos, err
	}
	clusters := grapheme.Split(string(b))
	i, off := 0, 0
	for i < len(clusters) && grapheme.IsSpace(clusters[i]) {
		off += len(clusters[i])
		i++
	}
	for i < len(clusters) && !grapheme.IsSpace(clusters[i]) {
		off += len(clusters[i])
		i++
	}
	return pos + int64(off), nil
}

// PrevWordBoundary returns the start of the word before pos.
func (s *Store) PrevWordBoundary(pos int64) (int64, error) {
	start, err := s.LineStartBefore(pos)
	if err != nil {
		return pos, err
	}
	if pos <= start {
		return s.PrevGrapheme(pos)
	}
	b, err := s.Read(ByteRange{Start: start, End: pos})
	if err != nil {
		return pos, err
	}
	clusters := grapheme.Split(string(b))
	i, off := len(clusters), len(b)
	for i > 0 && grapheme.IsSpace(clusters[i-1]) {
		i--
		off -= len(clusters[i])
	}
	for i > 0 && !grapheme.IsSpace(clusters[i-1]) {
		i--
		off -= len(clusters[i])
	}
	return start + int64(off), nil
}
