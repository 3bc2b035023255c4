package buffer

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Insert inserts text at pos. The store is unchanged on error.
func (s *Store) Insert(pos int64, text string) error {
	return s.Replace(ByteRange{Start: pos, End: pos}, text)
}

// Delete removes the bytes of r. The store is unchanged on error.
func (s *Store) Delete(r ByteRange) error {
	return s.Replace(r, "")
}

// Replace deletes r and inserts text in its place as one change. Both
// ends of r must lie on character boundaries and text must be valid
// UTF-8; otherwise ErrInvalidBoundary is returned.
func (s *Store) Replace(r ByteRange, text string) error {
	if r.Start < 0 || r.End < r.Start || r.End > s.Len() {
		return fmt.Errorf("edit %s of %d: %w", r, s.Len(), ErrOutOfRange)
	}
	if r.IsEmpty() && text == "" {
		return nil
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("inserted text is not valid UTF-8: %w", ErrInvalidBoundary)
	}
	if err := s.checkBoundary(r.Start); err != nil {
		return err
	}
	if r.End != r.Start {
		if err := s.checkBoundary(r.End); err != nil {
			return err
		}
	}

	change := s.beginChange()
	left, rest := s.tree.split(s.tree.root, r.Start)
	_, right := s.tree.split(rest, r.Len())
	if text != "" {
		left = s.appendAdded(left, text)
	}
	s.tree.root = s.tree.merge(left, right)
	s.noteLoneCR(r.Start, text)
	change.addAppliedEdit(AppliedEdit{Range: r, InsertText: text})
	s.commitChange(change)
	return nil
}

// noteLoneCR sets loneCR when the text inserted at pos, or the CR
// just before pos, may now lack a following LF.
func (s *Store) noteLoneCR(pos int64, text string) {
	if s.loneCR {
		return
	}
	lo := maxInt64(pos-1, 0)
	hi := minInt64(pos+int64(len(text))+1, s.Len())
	b, err := s.Read(ByteRange{Start: lo, End: hi})
	if err != nil {
		s.loneCR = true
		return
	}
	if bytes.IndexByte(b, '\r') < 0 {
		return
	}
	s.loneCR = hasLoneCR(b, hi == s.Len())
}

// appendAdded writes text to the edit log and appends a piece for it to
// left. Typing at the end of the previous insertion extends that piece.
func (s *Store) appendAdded(left *node, text string) *node {
	start := int64(len(s.add))
	s.add = append(s.add, text...)
	s.addIndex.appendFrom([]byte(text), start)

	p := Piece{Buffer: Added, Start: start, Len: int64(len(text))}
	if last, ok := s.tree.last(left); ok && last.Buffer == Added && last.Start+last.Len == start {
		left, _ = s.tree.split(left, left.size()-last.Len)
		p = Piece{Buffer: Added, Start: last.Start, Len: last.Len + p.Len}
	}
	return s.tree.merge(left, s.tree.leaf(p))
}

// checkBoundary rejects pos when it falls inside a multi-byte character.
func (s *Store) checkBoundary(pos int64) error {
	if pos == 0 || pos == s.Len() {
		return nil
	}
	lo := maxInt64(0, pos-(utf8.UTFMax-1))
	hi := minInt64(s.Len(), pos+utf8.UTFMax-1)
	b, err := s.Read(ByteRange{Start: lo, End: hi})
	if err != nil {
		return err
	}
	if splitsRune(b, int(pos-lo)) {
		return fmt.Errorf("offset %d: %w", pos, ErrInvalidBoundary)
	}
	return nil
}

// splitsRune reports whether a boundary before b[at] cuts a valid
// multi-byte sequence. Bytes of invalid sequences stand alone.
func splitsRune(b []byte, at int) bool {
	if at <= 0 || at >= len(b) || utf8.RuneStart(b[at]) {
		return false
	}
	for back := 1; back < utf8.UTFMax && at-back >= 0; back++ {
		if !utf8.RuneStart(b[at-back]) {
			continue
		}
		r, size := utf8.DecodeRune(b[at-back:])
		if r == utf8.RuneError && size <= 1 {
			return false
		}
		return size > back
	}
	return false
}
