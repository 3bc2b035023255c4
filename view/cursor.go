package view

import (
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
)

// Cursor is a byte position with an optional selection anchor and the
// goal column kept across vertical moves. Anchor and PreferredColumn
// are -1 when unset.
type Cursor struct {
	Position        int64
	Anchor          int64
	PreferredColumn int
}

// Selection returns the selected range, if any.
func (c Cursor) Selection() (buffer.ByteRange, bool) {
	if c.Anchor < 0 || c.Anchor == c.Position {
		return buffer.ByteRange{}, false
	}
	return buffer.NormalizeRange(buffer.ByteRange{Start: c.Anchor, End: c.Position}), true
}

// Cursor returns the cursor, shifted by edits made through other views.
func (v *View) Cursor() Cursor {
	v.sync()
	return v.cursor
}

func (v *View) Selection() (buffer.ByteRange, bool) {
	v.sync()
	return v.cursor.Selection()
}

// SetCursor places the cursor, clamped to the document. The preferred
// column is cleared.
func (v *View) SetCursor(pos int64, extend bool) {
	v.beginFrame()
	v.moveTo(pos, extend)
	v.ensureVisible(v.cursor.Position)
}

// SetSelection selects [anchor, pos) with the cursor at pos.
func (v *View) SetSelection(anchor, pos int64) {
	v.beginFrame()
	n := v.store.Len()
	v.cursor = Cursor{Position: clampInt64(pos, 0, n), Anchor: clampInt64(anchor, 0, n), PreferredColumn: -1}
	v.ensureVisible(v.cursor.Position)
}

func (v *View) moveTo(pos int64, extend bool) {
	pos = clampInt64(pos, 0, v.store.Len())
	switch {
	case !extend:
		v.cursor.Anchor = NoSource
	case v.cursor.Anchor < 0:
		v.cursor.Anchor = v.cursor.Position
	}
	v.cursor.Position = pos
	v.cursor.PreferredColumn = -1
}

// ByteToDisplay returns the view line and cell column showing off. The
// layout is rebuilt around off when it does not cover it.
func (v *View) ByteToDisplay(off int64) (line int64, col int, ok bool) {
	v.beginFrame()
	return v.byteToDisplay(off)
}

func (v *View) byteToDisplay(off int64) (int64, int, bool) {
	off = clampInt64(off, 0, v.store.Len())
	lay := v.ensureLayout()
	if !lay.Covers(off) {
		v.rebuild(off, v.estimateViewLine(off))
		lay = v.layout
	}
	li, ok := lay.LineForByte(off)
	if !ok {
		return 0, 0, false
	}
	return lay.FirstViewLine + int64(li), lay.Lines[li].ColumnOf(off), true
}

// DisplayToByte returns the source byte at view line line, cell column
// col. Synthetic cells resolve to the next sourced char on the line or
// its end; ok is false for a synthetic-only line.
func (v *View) DisplayToByte(line int64, col int) (int64, bool) {
	v.beginFrame()
	dl, ok := v.lineAt(line)
	if !ok {
		return NoSource, false
	}
	return dl.ByteAt(col)
}

// lineAt returns view line n, rebuilding the layout to reach it.
func (v *View) lineAt(n int64) (DisplayLine, bool) {
	lay := v.ensureLayout()
	if n < 0 || n >= lay.TotalViewLines {
		return DisplayLine{}, false
	}
	if n < lay.FirstViewLine || n >= lay.LastViewLine() {
		v.rebuild(v.estimateByte(n), n)
		lay = v.layout
	}
	idx := n - lay.FirstViewLine
	if idx < 0 || idx >= int64(len(lay.Lines)) {
		return DisplayLine{}, false
	}
	return lay.Lines[idx], true
}

func (v *View) MoveUp(extend bool)   { v.beginFrame(); v.moveVertical(-1, extend) }
func (v *View) MoveDown(extend bool) { v.beginFrame(); v.moveVertical(1, extend) }

// PageUp scrolls and moves the cursor up by one screen less one line.
func (v *View) PageUp(extend bool) { v.page(-1, extend) }

// PageDown scrolls and moves the cursor down by one screen less one line.
func (v *View) PageDown(extend bool) { v.page(1, extend) }

func (v *View) page(dir int64, extend bool) {
	v.beginFrame()
	v.ensureLayout()
	n := int64(maxInt(v.vp.Height-1, 1))
	v.scrollTo(v.vp.TopViewLine + dir*n)
	v.moveVertical(dir*n, extend)
}

// moveVertical moves the cursor by n display lines, skipping lines with
// no source, and keeps the goal column.
func (v *View) moveVertical(n int64, extend bool) {
	line, col, ok := v.byteToDisplay(v.cursor.Position)
	if !ok {
		return
	}
	goal := v.cursor.PreferredColumn
	if goal < 0 {
		goal = col
	}
	dir := int64(1)
	if n < 0 {
		dir, n = -1, -n
	}

	target := line
	var dest DisplayLine
	found := false
	for steps := int64(0); steps < n; steps++ {
		next := target + dir
		moved := false
		for {
			dl, ok := v.lineAt(next)
			if !ok {
				break
			}
			if dl.Sourced() {
				target, dest, moved, found = next, dl, true, true
				break
			}
			next += dir
		}
		if !moved {
			break
		}
	}
	if !found {
		return
	}
	off, ok := dest.ByteAt(goal)
	if !ok {
		return
	}
	v.moveTo(off, extend)
	v.cursor.PreferredColumn = goal
	v.ensureVisible(off)
}

// Horizontal moves act on source bytes and clear the preferred column.

func (v *View) MoveLeft(extend bool) {
	v.beginFrame()
	if r, ok := v.cursor.Selection(); ok && !extend {
		v.moveTo(r.Start, false)
	} else {
		v.stepWith(v.store.PrevGrapheme, extend)
	}
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveRight(extend bool) {
	v.beginFrame()
	if r, ok := v.cursor.Selection(); ok && !extend {
		v.moveTo(r.End, false)
	} else {
		v.stepWith(v.store.NextGrapheme, extend)
	}
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveWordLeft(extend bool) {
	v.beginFrame()
	v.stepWith(v.store.PrevWordBoundary, extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveWordRight(extend bool) {
	v.beginFrame()
	v.stepWith(v.store.NextWordBoundary, extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveLineStart(extend bool) {
	v.beginFrame()
	v.stepWith(v.store.LineStartBefore, extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveLineEnd(extend bool) {
	v.beginFrame()
	v.stepWith(v.store.LineEndAfter, extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveDocStart(extend bool) {
	v.beginFrame()
	v.moveTo(0, extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) MoveDocEnd(extend bool) {
	v.beginFrame()
	v.moveTo(v.store.Len(), extend)
	v.ensureVisible(v.cursor.Position)
}

func (v *View) stepWith(step func(int64) (int64, error), extend bool) {
	pos, err := step(v.cursor.Position)
	if err != nil {
		v.log.Debug("cursor move skipped", zap.Int64("pos", v.cursor.Position), zap.Error(err))
		return
	}
	v.moveTo(pos, extend)
}

// CursorScreen returns the cursor's cell position relative to the
// viewport; ok is false when it is off screen.
func (v *View) CursorScreen() (x, y int, ok bool) {
	v.beginFrame()
	return v.docToScreen(v.cursor.Position)
}
