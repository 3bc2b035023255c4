// Package buffer implements the edit-optimised text store behind a view.
//
// Offsets are 0-based byte offsets into the logical document. Ranges are
// half-open: [Start, End). Content is held as a persistent balanced tree of
// pieces referencing either the immutable source bytes or an append-only
// edit log. Sources above Options.LazyThreshold are never materialised;
// their bytes are fetched window by window through a SegmentLoader.
package buffer
