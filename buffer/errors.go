package buffer

import "errors"

// Access errors
var (
	// ErrOutOfRange indicates an offset or range beyond the document length.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidBoundary indicates an edit that would split a multi-byte character.
	ErrInvalidBoundary = errors.New("edit would split a multi-byte character")

	// ErrUnindexed indicates that line addressing is unavailable because the
	// document is above the lazy threshold and lines were not counted.
	ErrUnindexed = errors.New("line index not available")
)

// Lazy loading errors
var (
	// ErrPending indicates that a window is still being fetched. Results
	// returned with it are a best-effort prefix.
	ErrPending = errors.New("segment not loaded yet")

	// ErrChunkLoad indicates that the segment loader failed to read a window.
	// Committed content is unaffected; results returned with it are a prefix.
	ErrChunkLoad = errors.New("segment load failed")
)

// Configuration errors
var (
	// ErrNoDataSource indicates that Source named no content.
	ErrNoDataSource = errors.New("no data source provided")

	// ErrMultipleDataSources indicates that Source named more than one kind of content.
	ErrMultipleDataSources = errors.New("multiple data sources provided")
)

// IsTransient reports whether err is a non-fatal read outcome: the bytes
// returned alongside it are valid but incomplete.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPending) || errors.Is(err, ErrChunkLoad)
}
