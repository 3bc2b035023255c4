package buffer

import (
	"errors"
	"fmt"
	"io"
)

type SegmentState uint8

const (
	SegmentReady SegmentState = iota
	SegmentPending
	SegmentFailed
)

func (s SegmentState) String() string {
	switch s {
	case SegmentReady:
		return "ready"
	case SegmentPending:
		return "pending"
	default:
		return "failed"
	}
}

// Segment is the outcome of one window fetch.
type Segment struct {
	State SegmentState
	Data  []byte
	Err   error
}

// SegmentLoader fetches byte windows of a source that is too large to
// hold in memory. Fetch must not block on slow I/O; it returns
// SegmentPending and completes in the background instead.
type SegmentLoader interface {
	Fetch(r ByteRange) Segment
	Size() int64
}

// InterestSetter is implemented by loaders that discard fetch results
// which no longer overlap the range the viewport wants.
type InterestSetter interface {
	SetInterest(r ByteRange)
}

// ReaderAtLoader serves windows synchronously from an io.ReaderAt.
type ReaderAtLoader struct {
	r    io.ReaderAt
	size int64
}

func NewReaderAtLoader(r io.ReaderAt, size int64) *ReaderAtLoader {
	return &ReaderAtLoader{r: r, size: size}
}

func (l *ReaderAtLoader) Size() int64 { return l.size }

func (l *ReaderAtLoader) Fetch(r ByteRange) Segment {
	data, err := readFull(l.r, r)
	if err != nil {
		return Segment{State: SegmentFailed, Err: err}
	}
	return Segment{State: SegmentReady, Data: data}
}

// ReadAt exposes the underlying reader for bulk scans such as CountLines.
func (l *ReaderAtLoader) ReadAt(p []byte, off int64) (int, error) {
	return l.r.ReadAt(p, off)
}

func readFull(src io.ReaderAt, r ByteRange) ([]byte, error) {
	buf := make([]byte, r.Len())
	n, err := src.ReadAt(buf, r.Start)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read %s: %w", r, err)
}
