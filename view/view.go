package view

import (
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
)

// View is one split's window onto a Store: its own transform, layout,
// viewport and cursor. Several views may share a Store; each catches up
// with edits made through the others on its next call.
//
// A View is not safe for concurrent use. Every exported method is one
// frame: the transform is consulted at most once per call.
type View struct {
	store *buffer.Store
	cfg   Config
	log   *zap.Logger
	gate  *Gate

	vp     Viewport
	placed bool // vp.AnchorByte has been derived from a layout
	// anchorSkew is the distance from the top line to the line holding
	// vp.AnchorByte; negative when the top lines are synthetic.
	anchorSkew int64
	cursor     Cursor

	layout      *Layout
	stale       bool
	retry       bool // layout was built from partial data or without the transform
	loadErr     error
	layoutFrame uint64
	gateGen     uint64
	frame       uint64
	seen        uint64
}

func New(store *buffer.Store, cfg Config) *View {
	cfg = cfg.withDefaults()
	return &View{
		store:  store,
		cfg:    cfg,
		log:    cfg.Logger,
		gate:   NewGate(cfg.Transform, cfg.Logger),
		vp:     Viewport{Width: cfg.Width, Height: cfg.Height},
		cursor: Cursor{Anchor: NoSource, PreferredColumn: -1},
		stale:  true,
		seen:   store.Version(),
	}
}

func (v *View) Store() *buffer.Store { return v.store }

func (v *View) Config() Config { return v.cfg }

func (v *View) beginFrame() {
	v.frame++
	v.gate.NextFrame()
	v.sync()
}

// sync replays edits committed since the last call onto the cursor and
// the viewport anchor.
func (v *View) sync() {
	ver := v.store.Version()
	if ver == v.seen {
		return
	}
	changes, ok := v.store.ChangesSince(v.seen)
	if ok {
		for _, c := range changes {
			v.cursor.Position = c.MapOffset(v.cursor.Position)
			if v.cursor.Anchor >= 0 {
				v.cursor.Anchor = c.MapOffset(v.cursor.Anchor)
			}
			v.vp.AnchorByte = c.MapOffset(v.vp.AnchorByte)
		}
	} else {
		v.log.Debug("change log truncated, clamping positions",
			zap.Uint64("seen", v.seen), zap.Uint64("version", ver))
	}
	n := v.store.Len()
	v.cursor.Position = clampInt64(v.cursor.Position, 0, n)
	if v.cursor.Anchor > n {
		v.cursor.Anchor = n
	}
	v.vp.AnchorByte = clampInt64(v.vp.AnchorByte, 0, n)
	v.seen = ver
	v.stale = true
}

// LoadErr returns the read error of the latest layout rebuild, or nil.
// buffer.IsTransient reports whether the layout holds best-effort
// content that a later rebuild may complete.
func (v *View) LoadErr() error { return v.loadErr }

// exactLines reports whether view lines are exactly source lines.
func (v *View) exactLines() bool {
	return v.indexedLines() && v.cfg.WrapMode == WrapNone && !v.gate.Active()
}

// indexedLines reports whether the store's line index matches the
// source lines the token builder produces. A lone CR ends a display
// line the index does not count.
func (v *View) indexedLines() bool {
	return v.store.Indexed() && !v.store.HasLoneCR()
}

func (v *View) ensureLayout() *Layout {
	fresh := v.layout != nil && !v.stale && v.gateGen == v.gate.Generation()
	if fresh && !(v.retry && v.layoutFrame != v.frame) {
		return v.layout
	}
	v.rebuild(v.vp.AnchorByte, v.vp.TopViewLine+v.anchorSkew)
	v.stabilize()
	return v.layout
}

// rebuild lays out a window around anchor and places the anchor's line
// at view line anchorViewLine.
func (v *View) rebuild(anchor, anchorViewLine int64) {
	docLen := v.store.Len()
	anchor = clampInt64(anchor, 0, docLen)
	r, atLineStart := v.windowAround(anchor)

	b, err := v.store.Read(r)
	v.loadErr = err
	partial := false
	if err != nil {
		if !buffer.IsTransient(err) {
			v.log.Warn("layout read failed", zap.Stringer("range", r), zap.Error(err))
			b = nil
		}
		partial = true
		r.End = r.Start + int64(len(b))
	}
	base := tokenize(b, r.Start)

	hint := ViewportHint{
		Range:       r,
		Width:       v.vp.Width,
		Height:      v.vp.Height,
		TopViewLine: v.vp.TopViewLine,
		Version:     v.store.Version(),
	}
	res, consulted := v.gate.Apply(base, hint)

	var spans []HighlightSpan
	if v.cfg.Highlighter != nil && !r.IsEmpty() {
		spans = v.cfg.Highlighter.Spans(r)
	}
	width := 0
	if v.cfg.WrapMode != WrapNone {
		width = v.vp.Width
		if res.Hints.WrapWidth > 0 {
			width = res.Hints.WrapWidth
		}
	}
	opt := LayoutOptions{
		Range:           r,
		DocLen:          docLen,
		Width:           width,
		Wrap:            v.cfg.WrapMode,
		FirstLineNumber: v.lineNumberAt(r.Start),
		AtLineStart:     atLineStart,
		Highlights:      spans,
		Version:         v.store.Version(),
	}
	lay := BuildLayout(res.Tokens, opt)
	if err := checkLayout(lay); err != nil {
		if debugLayout {
			panic(err)
		}
		v.log.Warn("falling back to minimal layout", zap.Error(err))
		opt.Highlights = nil
		lay = BuildLayout(base, opt)
		res.Hints = LayoutHints{}
	}
	v.place(lay, anchor, anchorViewLine, res.Hints)

	v.layout = lay
	v.stale = false
	v.retry = partial || !consulted
	v.layoutFrame = v.frame
	v.gateGen = v.gate.Generation()
	v.store.SetInterest(r)
	v.log.Debug("layout rebuilt",
		zap.Stringer("range", r),
		zap.Int("lines", len(lay.Lines)),
		zap.Int64("first_view_line", lay.FirstViewLine),
		zap.Int64("total_view_lines", lay.TotalViewLines),
		zap.Bool("partial", partial))
}

// place fixes the layout's position in the document and its totals.
func (v *View) place(lay *Layout, anchor, anchorViewLine int64, hints LayoutHints) {
	li, _ := lay.LineForByte(anchor)
	first := anchorViewLine - int64(li)
	switch {
	case lay.ReachesStart():
		first = 0
	case v.exactLines():
		if line, err := v.store.LineOf(lay.SourceRange.Start); err == nil {
			first = line
		}
	case first < 1:
		first = 1
	}
	lay.FirstViewLine = first

	n := int64(len(lay.Lines))
	switch {
	case hints.TotalViewLines > 0:
		lay.TotalViewLines = hints.TotalViewLines
		lay.Exact = true
	case lay.ReachesStart() && lay.ReachesEnd():
		lay.TotalViewLines = n
		lay.Exact = true
	case v.exactLines():
		count, _ := v.store.LineCount()
		lay.TotalViewLines = count
		lay.Exact = true
	default:
		after := int64(0)
		if rest := lay.docLen - lay.SourceRange.End; rest > 0 {
			after = int64(float64(rest)/lay.bytesPerViewLine()) + 1
		}
		lay.TotalViewLines = first + n + after
	}
	if floor := first + n; lay.TotalViewLines < floor {
		lay.TotalViewLines = floor
	}

	if hints.TotalInjectedLines > 0 {
		lay.TotalInjectedLines = hints.TotalInjectedLines
	} else {
		for _, dl := range lay.Lines {
			if !dl.Sourced() {
				lay.TotalInjectedLines++
			}
		}
	}
}

func (v *View) lineNumberAt(off int64) int64 {
	if !v.indexedLines() {
		return 0
	}
	line, err := v.store.LineOf(off)
	if err != nil {
		return 0
	}
	return line + 1
}

// windowAround picks the source range to lay out for anchor: about one
// screen before it and two after, on line boundaries.
func (v *View) windowAround(anchor int64) (r buffer.ByteRange, atLineStart bool) {
	h := int64(maxInt(v.vp.Height, 1))
	docLen := v.store.Len()

	if v.indexedLines() {
		line, _ := v.store.LineOf(anchor)
		count, _ := v.store.LineCount()
		from := maxInt64(0, line-h)
		to := minInt64(count-1, line+2*h)
		start, _ := v.store.LineStart(from)
		end := docLen
		if to+1 < count {
			end, _ = v.store.LineStart(to + 1)
		}
		return buffer.ByteRange{Start: start, End: end}, true
	}

	span := minInt64(int64(v.bytesPerViewLine())*h, buffer.MaxLineScan)
	lo := maxInt64(0, anchor-span)
	hi := minInt64(docLen, anchor+2*span)

	start, err := v.store.LineStartBefore(lo)
	if err != nil {
		start = lo
	}
	end, err := v.lineEndInclusive(hi)
	if err != nil {
		end = hi
	}
	if end < anchor {
		end = anchor
	}
	return buffer.ByteRange{Start: start, End: end}, v.atLineStart(start)
}

// lineEndInclusive returns the offset just past the terminator of the
// line containing pos.
func (v *View) lineEndInclusive(pos int64) (int64, error) {
	docLen := v.store.Len()
	end, err := v.store.LineEndAfter(pos)
	if err != nil || end >= docLen {
		return end, err
	}
	b, err := v.store.Read(buffer.ByteRange{Start: end, End: minInt64(docLen, end+2)})
	if err != nil {
		return end, err
	}
	if len(b) == 2 && b[0] == '\r' && b[1] == '\n' {
		return end + 2, nil
	}
	if b[0] == '\n' || b[0] == '\r' {
		return end + 1, nil
	}
	return end, nil
}

func (v *View) atLineStart(off int64) bool {
	if off == 0 {
		return true
	}
	b, err := v.store.Read(buffer.ByteRange{Start: off - 1, End: off})
	return err == nil && b[0] == '\n'
}

func (v *View) bytesPerViewLine() float64 {
	if v.layout == nil {
		return defaultBytesPerLine
	}
	return v.layout.bytesPerViewLine()
}
