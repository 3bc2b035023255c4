package view

import "github.com/iw2rmb/loom/buffer"

// Viewport is the visible window of a view. AnchorByte is the first
// source byte of the first sourced line at or near the top; it keeps the
// scroll position stable across rebuilds.
type Viewport struct {
	AnchorByte  int64
	TopViewLine int64
	Width       int
	Height      int
	LeftColumn  int
}

func (v *View) Viewport() Viewport { return v.vp }

func (v *View) maxTop() int64 {
	lay := v.layout
	if lay == nil {
		return 0
	}
	return maxInt64(0, lay.TotalViewLines-int64(v.vp.Height))
}

// ViewportContent returns the display lines [TopViewLine,
// TopViewLine+Height). With wrapping off, lines are cropped to
// [LeftColumn, LeftColumn+Width).
func (v *View) ViewportContent() []DisplayLine {
	v.beginFrame()
	v.ensureLayout()
	if v.vp.Width <= 0 || v.vp.Height <= 0 {
		return nil
	}
	v.coverTop(v.vp.TopViewLine, true)
	if !v.covered(v.vp.TopViewLine) {
		v.vp.TopViewLine = v.clampIntoLayout(v.vp.TopViewLine)
		v.deriveAnchor()
	}
	lay := v.layout
	idx := int(v.vp.TopViewLine - lay.FirstViewLine)
	if idx < 0 || idx >= len(lay.Lines) {
		return nil
	}
	end := minInt(idx+v.vp.Height, len(lay.Lines))
	out := make([]DisplayLine, 0, end-idx)
	for _, dl := range lay.Lines[idx:end] {
		if v.cfg.WrapMode == WrapNone {
			dl = dl.Crop(v.vp.LeftColumn, v.vp.Width)
		}
		out = append(out, dl)
	}
	return out
}

// Scroll moves the top line by delta display lines, clamped to
// [0, TotalViewLines-Height].
func (v *View) Scroll(delta int64) {
	v.beginFrame()
	v.ensureLayout()
	v.scrollTo(v.vp.TopViewLine + delta)
}

// ScrollTo moves the top line to line, clamped.
func (v *View) ScrollTo(line int64) {
	v.beginFrame()
	v.ensureLayout()
	v.scrollTo(line)
}

// SetLeftColumn sets the horizontal scroll offset used with WrapNone.
func (v *View) SetLeftColumn(col int) {
	v.vp.LeftColumn = maxInt(col, 0)
}

func (v *View) scrollTo(target int64) {
	target = clampInt64(target, 0, v.maxTop())
	if target == v.vp.TopViewLine && v.covered(target) {
		return
	}
	for i := 0; i < 3; i++ {
		v.coverTop(target, target == v.vp.TopViewLine)
		clamped := clampInt64(target, 0, v.maxTop())
		if clamped == target {
			break
		}
		target = clamped
	}
	if !v.covered(target) {
		target = v.clampIntoLayout(target)
	}
	v.vp.TopViewLine = target
	v.deriveAnchor()
}

// covered reports whether the screen starting at top is inside the layout.
func (v *View) covered(top int64) bool {
	lay := v.layout
	if top < lay.FirstViewLine {
		return false
	}
	last := lay.LastViewLine()
	if top >= last {
		return lay.ReachesEnd() && len(lay.Lines) == 0
	}
	return top+int64(v.vp.Height) <= last || lay.ReachesEnd()
}

// clampIntoLayout moves top to the nearest line whose screen the layout
// can fill.
func (v *View) clampIntoLayout(top int64) int64 {
	lay := v.layout
	hi := maxInt64(lay.FirstViewLine, lay.LastViewLine()-int64(v.vp.Height))
	if lay.ReachesEnd() {
		hi = maxInt64(lay.FirstViewLine, lay.LastViewLine()-1)
	}
	return clampInt64(top, lay.FirstViewLine, hi)
}

// coverTop rebuilds the layout when the screen starting at top falls
// outside it. useAnchor re-centres on the viewport anchor, which is
// exact; otherwise a byte is estimated from the average bytes per line.
func (v *View) coverTop(top int64, useAnchor bool) {
	if v.covered(top) {
		return
	}
	if useAnchor {
		v.rebuild(v.vp.AnchorByte, top+v.anchorSkew)
		return
	}
	v.rebuild(v.estimateByte(top), top)
}

// estimateByte guesses the first byte of view line n.
func (v *View) estimateByte(n int64) int64 {
	lay := v.layout
	if v.exactLines() {
		count, _ := v.store.LineCount()
		off, err := v.store.LineStart(clampInt64(n, 0, count-1))
		if err == nil {
			return off
		}
	}
	if idx := n - lay.FirstViewLine; idx >= 0 && idx < int64(len(lay.Lines)) {
		if dl := lay.Lines[idx]; dl.Sourced() {
			return dl.firstSource()
		}
	}
	avg := lay.bytesPerViewLine()
	var off int64
	if n < lay.FirstViewLine {
		off = lay.SourceRange.Start - int64(float64(lay.FirstViewLine-n)*avg)
	} else {
		off = lay.SourceRange.End + int64(float64(n-lay.LastViewLine())*avg)
	}
	return clampInt64(off, 0, v.store.Len())
}

// estimateViewLine guesses the view line of off.
func (v *View) estimateViewLine(off int64) int64 {
	if v.exactLines() {
		if line, err := v.store.LineOf(off); err == nil {
			return line
		}
	}
	lay := v.layout
	if lay == nil {
		return 0
	}
	avg := lay.bytesPerViewLine()
	if off < lay.SourceRange.Start {
		return lay.FirstViewLine - int64(float64(lay.SourceRange.Start-off)/avg) - 1
	}
	return lay.LastViewLine() + int64(float64(off-lay.SourceRange.End)/avg)
}

// stabilize relocates the top line after a rebuild by finding the
// anchor byte in the new layout, falling back to the nearest line.
func (v *View) stabilize() {
	lay := v.layout
	if !v.placed {
		v.placed = true
		v.vp.TopViewLine = clampInt64(v.vp.TopViewLine, 0, v.maxTop())
		v.deriveAnchor()
		return
	}
	li, _ := lay.LineForByte(v.vp.AnchorByte)
	top := lay.FirstViewLine + int64(li) - v.anchorSkew
	v.vp.TopViewLine = clampInt64(top, 0, v.maxTop())
	v.deriveAnchor()
}

// deriveAnchor sets AnchorByte from the top line: the first sourced
// line at or below it, else the nearest one above.
func (v *View) deriveAnchor() {
	lay := v.layout
	if len(lay.Lines) == 0 {
		v.vp.AnchorByte, v.anchorSkew = lay.SourceRange.Start, 0
		return
	}
	idx := int(clampInt64(v.vp.TopViewLine-lay.FirstViewLine, 0, int64(len(lay.Lines)-1)))
	for i := idx; i < len(lay.Lines); i++ {
		if lay.Lines[i].Sourced() {
			v.vp.AnchorByte, v.anchorSkew = lay.Lines[i].firstSource(), int64(i-idx)
			return
		}
	}
	for i := idx - 1; i >= 0; i-- {
		if lay.Lines[i].Sourced() {
			v.vp.AnchorByte, v.anchorSkew = lay.Lines[i].firstSource(), int64(i-idx)
			return
		}
	}
}

// EnsureVisible scrolls so that the cursor is on screen with the
// configured margins.
func (v *View) EnsureVisible() {
	v.beginFrame()
	v.ensureVisible(v.cursor.Position)
}

func (v *View) ensureVisible(off int64) {
	line, col, ok := v.byteToDisplay(off)
	if !ok || v.vp.Height <= 0 {
		return
	}
	h := int64(v.vp.Height)
	margin := int64(minInt(v.cfg.ScrollMargin, (v.vp.Height-1)/2))
	top := v.vp.TopViewLine
	if line < top+margin {
		top = line - margin
	}
	if line > top+h-1-margin {
		top = line - (h - 1 - margin)
	}
	v.scrollTo(top)

	if v.cfg.WrapMode != WrapNone || v.vp.Width <= 0 {
		v.vp.LeftColumn = 0
		return
	}
	hm := minInt(v.cfg.HorizontalMargin, (v.vp.Width-1)/2)
	left := v.vp.LeftColumn
	if col < left+hm {
		left = maxInt(0, col-hm)
	}
	if col > left+v.vp.Width-1-hm {
		left = col - (v.vp.Width - 1 - hm)
	}
	v.vp.LeftColumn = left
}

// SetSize resizes the viewport.
func (v *View) SetSize(width, height int) {
	width, height = maxInt(width, 0), maxInt(height, 0)
	if width == v.vp.Width && height == v.vp.Height {
		return
	}
	v.vp.Width, v.vp.Height = width, height
	v.cfg.Width, v.cfg.Height = width, height
	v.stale = true
}

// SetWrapMode changes wrapping; the layout is rebuilt on next use.
func (v *View) SetWrapMode(m WrapMode) {
	if m == v.cfg.WrapMode {
		return
	}
	v.cfg.WrapMode = m
	v.vp.LeftColumn = 0
	v.stale = true
}

// SetTransform replaces the view's transform.
func (v *View) SetTransform(t Transform) {
	v.gate.SetTransform(t)
}

// InvalidateTransform asks the transform again on the next frame, for
// example after a plugin's inputs changed.
func (v *View) InvalidateTransform() {
	v.gate.Invalidate()
}

// SetHighlighter replaces the highlighter.
func (v *View) SetHighlighter(h Highlighter) {
	v.cfg.Highlighter = h
	v.stale = true
}

// Refresh marks the layout stale, for example after an asynchronous
// loader delivered windows.
func (v *View) Refresh() {
	v.stale = true
}

// Layout returns the current layout, rebuilding it if needed.
func (v *View) Layout() *Layout {
	v.beginFrame()
	return v.ensureLayout()
}

// Interest returns the source range the current layout covers.
func (v *View) Interest() buffer.ByteRange {
	if v.layout == nil {
		return buffer.ByteRange{}
	}
	return v.layout.SourceRange
}
