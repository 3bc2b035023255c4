package buffer

import "go.uber.org/zap"

const (
	DefaultLazyThreshold  int64 = 64 << 20
	DefaultWindowSize     int64 = 64 << 10
	DefaultCacheWindows         = 256
	DefaultChangeLogLimit       = 256

	// MaxLineScan bounds how far line boundaries are searched in an
	// unindexed document before the scan position is used as a boundary.
	MaxLineScan int64 = 1 << 20
)

type Options struct {
	// LazyThreshold is the source size above which bytes are fetched on
	// demand and no line index is built. Default: 64 MiB.
	LazyThreshold int64

	// WindowSize is the byte size of one lazily fetched window. Default: 64 KiB.
	WindowSize int64

	// CacheWindows is the number of windows kept in memory. Default: 256.
	CacheWindows int

	// ChangeLogLimit is the number of committed changes retained for
	// ChangesSince. Default: 256.
	ChangeLogLimit int

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.LazyThreshold <= 0 {
		o.LazyThreshold = DefaultLazyThreshold
	}
	if o.WindowSize <= 0 {
		o.WindowSize = DefaultWindowSize
	}
	if o.CacheWindows <= 0 {
		o.CacheWindows = DefaultCacheWindows
	}
	if o.ChangeLogLimit <= 0 {
		o.ChangeLogLimit = DefaultChangeLogLimit
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
