package buffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Indexed reports whether line addressing is exact and O(log n).
func (s *Store) Indexed() bool { return s.tree.root.lineCount() >= 0 }

// LineCount returns the number of lines: newlines + 1. Unindexed
// documents return ErrUnindexed unless CountLines ran at this version.
func (s *Store) LineCount() (int64, error) {
	if n := s.tree.root.lineCount(); n >= 0 {
		return n + 1, nil
	}
	if s.counted.ok && s.counted.version == s.version {
		return s.counted.lines, nil
	}
	return 0, ErrUnindexed
}

// CountLines counts lines by scanning the source. It blocks, so callers
// run it off the render path; the result is cached for this version.
func (s *Store) CountLines(ctx context.Context) (int64, error) {
	if n, err := s.LineCount(); err == nil {
		return n, nil
	}
	ra, ok := s.loader.(io.ReaderAt)
	if !ok {
		return 0, ErrUnindexed
	}
	version := s.version
	var total int64
	var scanErr error
	buf := make([]byte, s.opt.WindowSize)
	s.tree.each(s.tree.root, 0, ByteRange{End: s.Len()}, func(p Piece, _ int64) bool {
		if n := s.pieceNewlines(p); n >= 0 {
			total += n
			return true
		}
		for off := p.Start; off < p.Start+p.Len; off += int64(len(buf)) {
			if err := ctx.Err(); err != nil {
				scanErr = err
				return false
			}
			chunk := buf[:minInt64(int64(len(buf)), p.Start+p.Len-off)]
			n, err := ra.ReadAt(chunk, off)
			if n < len(chunk) {
				scanErr = fmt.Errorf("count lines at %d: %w: %v", off, ErrChunkLoad, err)
				return false
			}
			total += int64(bytes.Count(chunk, []byte{'\n'}))
		}
		return true
	})
	if scanErr != nil {
		return 0, scanErr
	}
	s.counted = lineCountCache{ok: true, version: version, lines: total + 1}
	s.log.Debug("lines counted", zap.Int64("lines", total+1), zap.Uint64("version", version))
	return total + 1, nil
}

// LineStart returns the offset of the first byte of line (0-based).
func (s *Store) LineStart(line int64) (int64, error) {
	if !s.Indexed() {
		return 0, ErrUnindexed
	}
	if line < 0 || line > s.tree.root.lineCount() {
		return 0, fmt.Errorf("line %d: %w", line, ErrOutOfRange)
	}
	if line == 0 {
		return 0, nil
	}
	return s.tree.nthNewline(s.tree.root, line) + 1, nil
}

// LineOf returns the 0-based line containing pos.
func (s *Store) LineOf(pos int64) (int64, error) {
	if !s.Indexed() {
		return 0, ErrUnindexed
	}
	if pos < 0 || pos > s.Len() {
		return 0, fmt.Errorf("offset %d: %w", pos, ErrOutOfRange)
	}
	return s.tree.newlinesBefore(s.tree.root, pos), nil
}

// LineStartBefore returns the start of the line containing pos. Without
// an index it scans backwards at most MaxLineScan bytes; a line longer
// than that is cut at the nearest character boundary.
func (s *Store) LineStartBefore(pos int64) (int64, error) {
	if pos < 0 || pos > s.Len() {
		return 0, fmt.Errorf("offset %d: %w", pos, ErrOutOfRange)
	}
	if s.Indexed() {
		line := s.tree.newlinesBefore(s.tree.root, pos)
		return s.LineStart(line)
	}
	floor := maxInt64(0, pos-MaxLineScan)
	for end := pos; end > floor; {
		start := maxInt64(floor, end-s.opt.WindowSize)
		b, err := s.Read(ByteRange{Start: start, End: end})
		if err != nil {
			return pos, err
		}
		if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	if floor == 0 {
		return 0, nil
	}
	return s.alignForward(floor)
}

// LineEndAfter returns the offset of the line terminator ending the line
// containing pos, or Len when that line is the last. For CRLF the
// offset is that of '\r'.
func (s *Store) LineEndAfter(pos int64) (int64, error) {
	if pos < 0 || pos > s.Len() {
		return 0, fmt.Errorf("offset %d: %w", pos, ErrOutOfRange)
	}
	var nl int64 = -1
	if s.Indexed() {
		line := s.tree.newlinesBefore(s.tree.root, pos)
		nl = s.tree.nthNewline(s.tree.root, line+1)
		if nl < 0 {
			return s.Len(), nil
		}
	} else {
		ceil := minInt64(s.Len(), pos+MaxLineScan)
		for start := pos; start < ceil && nl < 0; {
			end := minInt64(ceil, start+s.opt.WindowSize)
			b, err := s.Read(ByteRange{Start: start, End: end})
			if err != nil {
				return pos, err
			}
			if i := bytes.IndexByte(b, '\n'); i >= 0 {
				nl = start + int64(i)
			}
			start = end
		}
		if nl < 0 {
			if ceil == s.Len() {
				return ceil, nil
			}
			return s.alignForward(ceil)
		}
	}
	if nl > pos {
		if b, err := s.Read(ByteRange{Start: nl - 1, End: nl}); err == nil && b[0] == '\r' {
			return nl - 1, nil
		}
	}
	return nl, nil
}

// alignForward moves pos to the next character boundary.
func (s *Store) alignForward(pos int64) (int64, error) {
	b, err := s.Read(ByteRange{Start: pos, End: minInt64(s.Len(), pos+utf8.UTFMax)})
	if err != nil {
		return pos, err
	}
	for i := 0; i < len(b); i++ {
		if utf8.RuneStart(b[i]) {
			return pos + int64(i), nil
		}
	}
	return pos + int64(len(b)), nil
}
