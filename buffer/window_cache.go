package buffer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// windowCache holds fixed-size windows of a lazily loaded source.
// Window id w covers [w*size, min((w+1)*size, total)).
type windowCache struct {
	size   int64
	total  int64
	loader SegmentLoader
	log    *zap.Logger

	lru *lru.Cache[int64, []byte]

	// Pinned windows survive LRU eviction in held until unpinned.
	pinned map[int64]int
	held   map[int64][]byte
}

func newWindowCache(loader SegmentLoader, windowSize int64, capacity int, log *zap.Logger) *windowCache {
	c := &windowCache{
		size:   windowSize,
		total:  loader.Size(),
		loader: loader,
		log:    log,
		pinned: make(map[int64]int),
		held:   make(map[int64][]byte),
	}
	// Only fails for a non-positive size, which withDefaults rules out.
	c.lru, _ = lru.NewWithEvict[int64, []byte](capacity, c.onEvict)
	return c
}

func (c *windowCache) onEvict(id int64, data []byte) {
	if c.pinned[id] > 0 {
		c.held[id] = data
	}
}

func (c *windowCache) rangeOf(id int64) ByteRange {
	start := id * c.size
	return ByteRange{Start: start, End: minInt64(start+c.size, c.total)}
}

func (c *windowCache) idsFor(r ByteRange) (first, last int64) {
	if r.IsEmpty() {
		return 0, -1
	}
	return r.Start / c.size, (r.End - 1) / c.size
}

func (c *windowCache) pin(id int64) { c.pinned[id]++ }

func (c *windowCache) unpin(id int64) {
	c.pinned[id]--
	if c.pinned[id] <= 0 {
		delete(c.pinned, id)
		delete(c.held, id)
	}
}

// window returns the bytes of window id, fetching them if needed.
func (c *windowCache) window(id int64) ([]byte, error) {
	if data, ok := c.held[id]; ok {
		return data, nil
	}
	if data, ok := c.lru.Get(id); ok {
		return data, nil
	}
	r := c.rangeOf(id)
	seg := c.loader.Fetch(r)
	switch seg.State {
	case SegmentReady:
		if int64(len(seg.Data)) != r.Len() {
			c.log.Warn("segment size mismatch",
				zap.Int64("window", id), zap.Int64("want", r.Len()), zap.Int("got", len(seg.Data)))
			return nil, fmt.Errorf("window %d: short segment: %w", id, ErrChunkLoad)
		}
		c.lru.Add(id, seg.Data)
		if c.pinned[id] > 0 {
			c.held[id] = seg.Data
		}
		return seg.Data, nil
	case SegmentPending:
		return nil, fmt.Errorf("window %d: %w", id, ErrPending)
	default:
		c.log.Warn("segment load failed", zap.Int64("window", id), zap.Stringer("range", r), zap.Error(seg.Err))
		return nil, fmt.Errorf("window %d: %w: %v", id, ErrChunkLoad, seg.Err)
	}
}

// read copies [r.Start, r.End) of the source. On a pending or failed
// window it returns the bytes before that window with the error.
func (c *windowCache) read(r ByteRange, out []byte) ([]byte, error) {
	first, last := c.idsFor(r)
	for id := first; id <= last; id++ {
		c.pin(id)
	}
	defer func() {
		for id := first; id <= last; id++ {
			c.unpin(id)
		}
	}()
	for id := first; id <= last; id++ {
		data, err := c.window(id)
		if err != nil {
			return out, err
		}
		wr := c.rangeOf(id)
		lo := maxInt64(r.Start, wr.Start) - wr.Start
		hi := minInt64(r.End, wr.End) - wr.Start
		out = append(out, data[lo:hi]...)
	}
	return out, nil
}

// hold pins the windows covering r until the next hold call, so that
// scans elsewhere in the document cannot evict what the viewport shows.
func (c *windowCache) hold(prev, next ByteRange) {
	first, last := c.idsFor(next)
	for id := first; id <= last; id++ {
		c.pin(id)
		if data, ok := c.lru.Peek(id); ok {
			c.held[id] = data
		}
	}
	first, last = c.idsFor(prev)
	for id := first; id <= last; id++ {
		c.unpin(id)
	}
}
