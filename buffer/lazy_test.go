package buffer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
)

// synthReaderAt serves a generated document of fixed size: 79 letters
// then a newline, repeated. It records what was read.
type synthReaderAt struct {
	size int64

	mu        sync.Mutex
	reads     int
	bytesRead int64
	fail      map[int64]bool // offsets whose reads fail
}

func synthByte(off int64) byte {
	if off%80 == 79 {
		return '\n'
	}
	return byte('a' + off%26)
}

func (r *synthReaderAt) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	r.reads++
	r.bytesRead += int64(len(p))
	failing := r.fail[off]
	r.mu.Unlock()
	if failing {
		return 0, errors.New("disk on fire")
	}
	if off >= r.size {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && off+int64(n) < r.size {
		p[n] = synthByte(off + int64(n))
		n++
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func lazyOptions() Options {
	return Options{LazyThreshold: 1 << 20, WindowSize: 4 << 10, CacheWindows: 8}
}

func TestLazy_ReadsOnlyNeededWindows(t *testing.T) {
	src := &synthReaderAt{size: 20 << 20}
	s, err := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Lazy() {
		t.Fatalf("expected lazy store")
	}
	if s.Len() != src.size {
		t.Fatalf("len=%d, want %d", s.Len(), src.size)
	}
	base := src.bytesRead

	off := int64(10 << 20)
	got, err := s.Read(ByteRange{Start: off, End: off + 100})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("read len=%d, want 100", len(got))
	}
	for i, b := range got {
		if want := synthByte(off + int64(i)); b != want {
			t.Fatalf("byte %d=%q, want %q", i, b, want)
		}
	}
	if read := src.bytesRead - base; read > 2*lazyOptions().WindowSize {
		t.Fatalf("read %d source bytes for a 100 byte request", read)
	}
	reads := src.reads
	if _, err := s.Read(ByteRange{Start: off + 10, End: off + 50}); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if src.reads != reads {
		t.Fatalf("cached window was fetched again")
	}
}

func TestLazy_LinesUnindexedUntilCounted(t *testing.T) {
	src := &synthReaderAt{size: 2 << 20}
	s, err := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.LineCount(); !errors.Is(err, ErrUnindexed) {
		t.Fatalf("line count err=%v, want ErrUnindexed", err)
	}
	if _, err := s.LineStart(1); !errors.Is(err, ErrUnindexed) {
		t.Fatalf("line start err=%v, want ErrUnindexed", err)
	}

	n, err := s.CountLines(context.Background())
	if err != nil {
		t.Fatalf("count lines: %v", err)
	}
	want := src.size/80 + 1
	if n != want {
		t.Fatalf("count=%d, want %d", n, want)
	}
	if got, err := s.LineCount(); err != nil || got != want {
		t.Fatalf("cached count=%d,%v, want %d", got, err, want)
	}

	if err := s.Insert(0, "\n"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.LineCount(); !errors.Is(err, ErrUnindexed) {
		t.Fatalf("count after edit err=%v, want ErrUnindexed", err)
	}
}

func TestLazy_CountLinesHonoursCancel(t *testing.T) {
	src := &synthReaderAt{size: 2 << 20}
	s, _ := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.CountLines(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestLazy_LineBoundariesScan(t *testing.T) {
	src := &synthReaderAt{size: 2 << 20}
	s, _ := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())
	pos := int64(80*1000 + 30)
	start, err := s.LineStartBefore(pos)
	if err != nil || start != 80*1000 {
		t.Fatalf("LineStartBefore=%d,%v, want %d", start, err, 80*1000)
	}
	end, err := s.LineEndAfter(pos)
	if err != nil || end != 80*1000+79 {
		t.Fatalf("LineEndAfter=%d,%v, want %d", end, err, 80*1000+79)
	}
}

func TestLazy_EditsOverLazySource(t *testing.T) {
	src := &synthReaderAt{size: 2 << 20}
	s, _ := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())
	if err := s.Insert(1<<20, "HELLO"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Read(ByteRange{Start: 1<<20 - 2, End: 1<<20 + 7})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := string([]byte{synthByte(1<<20 - 2), synthByte(1<<20 - 1)}) + "HELLO" +
		string([]byte{synthByte(1 << 20), synthByte(1<<20 + 1)})
	if string(got) != want {
		t.Fatalf("read=%q, want %q", got, want)
	}
	if s.Len() != src.size+5 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestLazy_LoadFailureReturnsPrefix(t *testing.T) {
	ws := lazyOptions().WindowSize
	src := &synthReaderAt{size: 2 << 20, fail: map[int64]bool{2 * ws: true}}
	s, _ := Load(Source{ReaderAt: src, Size: src.size}, lazyOptions())

	got, err := s.Read(ByteRange{Start: ws, End: 3 * ws})
	if !errors.Is(err, ErrChunkLoad) {
		t.Fatalf("err=%v, want ErrChunkLoad", err)
	}
	if !IsTransient(err) {
		t.Fatalf("load failure should be transient")
	}
	if int64(len(got)) != ws {
		t.Fatalf("prefix len=%d, want %d", len(got), ws)
	}
	if got[0] != synthByte(ws) {
		t.Fatalf("prefix starts with %q", got[0])
	}
}

// pendingLoader never completes.
type pendingLoader struct{ size int64 }

func (l pendingLoader) Size() int64 { return l.size }

func (l pendingLoader) Fetch(ByteRange) Segment { return Segment{State: SegmentPending} }

func TestLazy_PendingWindow(t *testing.T) {
	s, err := Load(Source{Loader: pendingLoader{size: 1 << 30}}, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := s.Read(ByteRange{Start: 10, End: 20})
	if !errors.Is(err, ErrPending) || len(got) != 0 {
		t.Fatalf("read=%q,%v, want empty ErrPending", got, err)
	}
	if _, err := s.CountLines(context.Background()); !errors.Is(err, ErrUnindexed) {
		t.Fatalf("count lines err=%v, want ErrUnindexed", err)
	}
}

func TestWindowCache_PinnedWindowsSurviveEviction(t *testing.T) {
	src := &synthReaderAt{size: 1 << 20}
	opt := Options{LazyThreshold: 1, WindowSize: 1024, CacheWindows: 2}
	s, _ := Load(Source{ReaderAt: src, Size: src.size}, opt)

	s.SetInterest(ByteRange{Start: 0, End: 100})
	if _, err := s.Read(ByteRange{Start: 0, End: 100}); err != nil {
		t.Fatalf("read: %v", err)
	}
	for w := int64(10); w < 20; w++ {
		if _, err := s.Read(ByteRange{Start: w * 1024, End: w*1024 + 1}); err != nil {
			t.Fatalf("read window %d: %v", w, err)
		}
	}
	reads := src.reads
	if _, err := s.Read(ByteRange{Start: 0, End: 100}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if src.reads != reads {
		t.Fatalf("pinned window was evicted")
	}
}
