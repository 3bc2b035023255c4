package buffer

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// AsyncLoader fetches windows from an io.ReaderAt on background
// goroutines. Fetch returns SegmentPending for a window that is not yet
// loaded; when it completes, a value is sent on Ready and the next Fetch
// of the same range returns it. Results that no longer overlap the
// current interest range are dropped.
type AsyncLoader struct {
	src  io.ReaderAt
	size int64
	sem  *semaphore.Weighted
	log  *zap.Logger

	ready  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	inflight    map[ByteRange]struct{}
	done        map[ByteRange]Segment
	interest    ByteRange
	hasInterest bool
	wg          sync.WaitGroup
}

// NewAsyncLoader starts a loader with at most workers concurrent reads.
func NewAsyncLoader(src io.ReaderAt, size int64, workers int, log *zap.Logger) *AsyncLoader {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncLoader{
		src:      src,
		size:     size,
		sem:      semaphore.NewWeighted(int64(workers)),
		log:      log,
		ready:    make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[ByteRange]struct{}),
		done:     make(map[ByteRange]Segment),
	}
}

func (l *AsyncLoader) Size() int64 { return l.size }

// Ready signals that at least one fetch completed since the last receive.
func (l *AsyncLoader) Ready() <-chan struct{} { return l.ready }

func (l *AsyncLoader) Fetch(r ByteRange) Segment {
	l.mu.Lock()
	if seg, ok := l.done[r]; ok {
		delete(l.done, r)
		l.mu.Unlock()
		return seg
	}
	if _, ok := l.inflight[r]; ok {
		l.mu.Unlock()
		return Segment{State: SegmentPending}
	}
	l.inflight[r] = struct{}{}
	l.wg.Add(1)
	l.mu.Unlock()

	go l.load(r)
	return Segment{State: SegmentPending}
}

func (l *AsyncLoader) load(r ByteRange) {
	defer l.wg.Done()
	if err := l.sem.Acquire(l.ctx, 1); err != nil {
		l.mu.Lock()
		delete(l.inflight, r)
		l.mu.Unlock()
		return
	}
	data, err := readFull(l.src, r)
	l.sem.Release(1)

	seg := Segment{State: SegmentReady, Data: data}
	if err != nil {
		seg = Segment{State: SegmentFailed, Err: err}
	}

	l.mu.Lock()
	delete(l.inflight, r)
	if l.hasInterest && !l.interest.Overlaps(r) {
		l.mu.Unlock()
		l.log.Debug("discarding stale segment", zap.Stringer("range", r))
		return
	}
	l.done[r] = seg
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// SetInterest sets the range whose fetches are still wanted. Completed
// results outside it are released.
func (l *AsyncLoader) SetInterest(r ByteRange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interest = r
	l.hasInterest = true
	for k := range l.done {
		if !r.Overlaps(k) {
			delete(l.done, k)
		}
	}
}

// InFlight returns the number of fetches not yet completed.
func (l *AsyncLoader) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}

// ReadAt reads synchronously, bypassing the worker pool.
func (l *AsyncLoader) ReadAt(p []byte, off int64) (int, error) {
	return l.src.ReadAt(p, off)
}

// Close cancels queued fetches and waits for running ones.
func (l *AsyncLoader) Close() error {
	l.cancel()
	l.wg.Wait()
	return nil
}
