package view

// ViewportState is a stable host-facing snapshot of the view's camera.
type ViewportState struct {
	// TopViewLine is the view line rendered at screen row 0.
	TopViewLine int64
	// VisibleRows is the number of content rows available for rendering.
	VisibleRows int
	// LeftColumn is the horizontal cell offset in WrapNone mode.
	LeftColumn int
	// WrapMode is the active wrapping mode used to interpret coordinates.
	WrapMode WrapMode
	// AnchorByte is the source byte the top of the screen is pinned to.
	AnchorByte int64
	// TotalViewLines is exact when Exact is set, an estimate otherwise.
	TotalViewLines int64
	Exact          bool
}

// ViewportState returns the current host-facing viewport state.
func (v *View) ViewportState() ViewportState {
	v.beginFrame()
	lay := v.ensureLayout()
	left := 0
	if v.cfg.WrapMode == WrapNone && v.vp.LeftColumn > 0 {
		left = v.vp.LeftColumn
	}
	return ViewportState{
		TopViewLine:    v.vp.TopViewLine,
		VisibleRows:    maxInt(v.vp.Height, 0),
		LeftColumn:     left,
		WrapMode:       v.cfg.WrapMode,
		AnchorByte:     v.vp.AnchorByte,
		TotalViewLines: lay.TotalViewLines,
		Exact:          lay.Exact,
	}
}

// ScreenToDoc maps viewport-local cell coordinates to a source byte.
// Rows past the content clamp to the last visible line; cells on a
// synthetic-only line resolve to the nearest sourced line below it.
func (v *View) ScreenToDoc(x, y int) (int64, bool) {
	v.beginFrame()
	lay := v.ensureLayout()
	if v.vp.Height <= 0 {
		return 0, false
	}
	y = clampInt(y, 0, v.vp.Height-1)
	x = maxInt(x, 0)
	if v.cfg.WrapMode == WrapNone {
		x += v.vp.LeftColumn
	}
	line := minInt64(v.vp.TopViewLine+int64(y), lay.TotalViewLines-1)
	for n := line; n < lay.TotalViewLines; n++ {
		dl, ok := v.lineAt(n)
		if !ok {
			break
		}
		if dl.Sourced() {
			return dl.ByteAt(x)
		}
	}
	return 0, false
}

// DocToScreen maps a source byte to viewport-local cell coordinates.
// ok is false when the byte is outside the visible viewport.
func (v *View) DocToScreen(off int64) (x, y int, ok bool) {
	v.beginFrame()
	return v.docToScreen(off)
}

func (v *View) docToScreen(off int64) (x, y int, ok bool) {
	line, col, found := v.byteToDisplay(off)
	if !found {
		return 0, 0, false
	}
	y = int(line - v.vp.TopViewLine)
	x = col
	if v.cfg.WrapMode == WrapNone {
		x -= v.vp.LeftColumn
	}
	ok = y >= 0 && y < v.vp.Height && x >= 0 && x < v.vp.Width
	return x, y, ok
}
