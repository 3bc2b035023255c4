package buffer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Source names the content a Store is loaded from. Exactly one of Bytes,
// ReaderAt or Loader must be set. Size is required with ReaderAt.
type Source struct {
	Bytes    []byte
	ReaderAt io.ReaderAt
	Size     int64
	Loader   SegmentLoader
}

// Store is the document text. It is not safe for concurrent use; the
// owning view serialises access.
type Store struct {
	opt Options
	log *zap.Logger

	orig      []byte // nil when lazy
	origSize  int64
	origIndex *LineIndex // nil when lazy
	loader    SegmentLoader
	windows   *windowCache
	interest  ByteRange
	closer    io.Closer

	add      []byte
	addIndex *LineIndex

	tree    pieceTree
	version uint64
	changes changeLog

	counted lineCountCache
	ending  LineEnding
	loneCR  bool
}

type lineCountCache struct {
	ok      bool
	version uint64
	lines   int64
}

// New returns a store holding text.
func New(text string, opt Options) *Store {
	s, _ := Load(Source{Bytes: []byte(text)}, opt)
	return s
}

// Load creates a store from src. Sources larger than Options.LazyThreshold
// are read on demand; smaller ReaderAt sources are read fully.
func Load(src Source, opt Options) (*Store, error) {
	opt = opt.withDefaults()
	n := 0
	if src.Bytes != nil {
		n++
	}
	if src.ReaderAt != nil {
		n++
	}
	if src.Loader != nil {
		n++
	}
	switch {
	case n == 0:
		return nil, ErrNoDataSource
	case n > 1:
		return nil, ErrMultipleDataSources
	}

	s := &Store{
		opt:      opt,
		log:      opt.Logger,
		addIndex: &LineIndex{},
		changes:  changeLog{limit: opt.ChangeLogLimit},
	}
	s.tree.lines = s

	switch {
	case src.Bytes != nil:
		s.setMemory(src.Bytes)
	case src.ReaderAt != nil:
		if src.Size < 0 {
			return nil, fmt.Errorf("source size %d: %w", src.Size, ErrOutOfRange)
		}
		if src.Size <= opt.LazyThreshold {
			data, err := readFull(src.ReaderAt, ByteRange{End: src.Size})
			if err != nil {
				return nil, err
			}
			s.setMemory(data)
		} else {
			s.setLazy(NewReaderAtLoader(src.ReaderAt, src.Size))
		}
	default:
		s.setLazy(src.Loader)
	}

	if s.origSize > 0 {
		s.tree.root = s.tree.leaf(Piece{Buffer: Original, Start: 0, Len: s.origSize})
	}
	s.detectLineEnding()
	s.log.Debug("store loaded",
		zap.Int64("size", s.origSize),
		zap.Bool("lazy", s.orig == nil && s.origSize > 0),
		zap.Stringer("line_ending", s.ending))
	return s, nil
}

// Open loads the file at path. The file stays open while the store reads
// it lazily; Close releases it.
func Open(path string, opt Options) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	s, err := Load(Source{ReaderAt: f, Size: st.Size()}, opt)
	if err != nil {
		f.Close()
		return nil, err
	}
	if s.orig != nil {
		f.Close()
	} else {
		s.closer = f
	}
	return s, nil
}

func (s *Store) setMemory(data []byte) {
	s.orig = data
	s.origSize = int64(len(data))
	s.origIndex = buildLineIndex(data)
	s.loneCR = hasLoneCR(data, true)
}

func (s *Store) setLazy(l SegmentLoader) {
	s.loader = l
	s.origSize = l.Size()
	s.windows = newWindowCache(l, s.opt.WindowSize, s.opt.CacheWindows, s.log)
}

// Close releases the underlying file and loader, if any.
func (s *Store) Close() error {
	var err error
	if c, ok := s.loader.(io.Closer); ok {
		err = c.Close()
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Store) detectLineEnding() {
	head, _ := s.Read(ByteRange{End: minInt64(s.Len(), 4096)})
	i := bytes.IndexAny(head, "\r\n")
	switch {
	case i < 0 || head[i] == '\n':
		s.ending = LineEndingLF
	case i+1 < len(head) && head[i+1] == '\n':
		s.ending = LineEndingCRLF
	default:
		s.ending = LineEndingCR
	}
}

func (s *Store) LineEnding() LineEnding { return s.ending }

// HasLoneCR reports whether the document may hold a '\r' not followed by
// '\n'. Such a CR ends a display line but not an indexed line, so line
// numbers no longer match display lines. The flag is set at load and by
// edits that may create a lone CR, and is never cleared. Lazy documents
// are not scanned.
func (s *Store) HasLoneCR() bool { return s.loneCR }

// hasLoneCR scans b for a CR without a following LF. A CR in the last
// byte counts only when b ends the document.
func hasLoneCR(b []byte, atEnd bool) bool {
	for i := bytes.IndexByte(b, '\r'); i >= 0; {
		switch {
		case i+1 < len(b):
			if b[i+1] != '\n' {
				return true
			}
		case atEnd:
			return true
		}
		next := bytes.IndexByte(b[i+1:], '\r')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return false
}

// Len returns the document length in bytes.
func (s *Store) Len() int64 { return s.tree.root.size() }

// Version increases by one with every committed edit.
func (s *Store) Version() uint64 { return s.version }

// Lazy reports whether the original source is fetched on demand.
func (s *Store) Lazy() bool { return s.windows != nil }

// Pieces returns the current piece sequence in document order.
func (s *Store) Pieces() []Piece {
	out := make([]Piece, 0, s.tree.root.count())
	s.tree.each(s.tree.root, 0, ByteRange{End: s.Len()}, func(p Piece, _ int64) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Read returns the bytes of r. In lazy mode an unloaded or failing window
// yields the bytes before it together with an error wrapping ErrPending
// or ErrChunkLoad; see IsTransient.
func (s *Store) Read(r ByteRange) ([]byte, error) {
	if r.Start < 0 || r.End < r.Start || r.End > s.Len() {
		return nil, fmt.Errorf("read %s of %d: %w", r, s.Len(), ErrOutOfRange)
	}
	out := make([]byte, 0, r.Len())
	var readErr error
	s.tree.each(s.tree.root, 0, r, func(p Piece, at int64) bool {
		lo := maxInt64(r.Start, at) - at
		hi := minInt64(r.End, at+p.Len) - at
		out, readErr = s.appendPiece(out, p, lo, hi)
		return readErr == nil
	})
	return out, readErr
}

func (s *Store) appendPiece(out []byte, p Piece, lo, hi int64) ([]byte, error) {
	start, end := p.Start+lo, p.Start+hi
	switch {
	case p.Buffer == Added:
		return append(out, s.add[start:end]...), nil
	case s.orig != nil:
		return append(out, s.orig[start:end]...), nil
	default:
		return s.windows.read(ByteRange{Start: start, End: end}, out)
	}
}

// SetInterest tells the store which document range the viewport needs.
// Windows backing it are kept resident and loaders that support it stop
// delivering results elsewhere.
func (s *Store) SetInterest(r ByteRange) {
	if s.windows == nil {
		return
	}
	r = ByteRange{Start: clampInt64(r.Start, 0, s.Len()), End: clampInt64(r.End, 0, s.Len())}
	next := s.originalSpan(r)
	s.windows.hold(s.interest, next)
	s.interest = next
	if is, ok := s.loader.(InterestSetter); ok {
		is.SetInterest(next)
	}
}

// originalSpan returns the smallest original-buffer range referenced by
// the document bytes in r.
func (s *Store) originalSpan(r ByteRange) ByteRange {
	out := ByteRange{Start: -1}
	s.tree.each(s.tree.root, 0, r, func(p Piece, at int64) bool {
		if p.Buffer != Original {
			return true
		}
		lo := p.Start + maxInt64(r.Start, at) - at
		hi := p.Start + minInt64(r.End, at+p.Len) - at
		if out.Start < 0 || lo < out.Start {
			out.Start = lo
		}
		if hi > out.End {
			out.End = hi
		}
		return true
	})
	if out.Start < 0 {
		return ByteRange{}
	}
	return out
}

func (s *Store) pieceNewlines(p Piece) int64 {
	switch {
	case p.Buffer == Added:
		return s.addIndex.countIn(p.Start, p.Start+p.Len)
	case s.origIndex != nil:
		return s.origIndex.countIn(p.Start, p.Start+p.Len)
	default:
		return -1
	}
}

func (s *Store) pieceNthNewline(p Piece, k int64) int64 {
	ix := s.addIndex
	if p.Buffer == Original {
		ix = s.origIndex
	}
	return ix.nth(p.Start, k) - p.Start
}
