package view

import "github.com/iw2rmb/loom/buffer"

// Insert inserts text at pos and moves the cursor to the end of it.
func (v *View) Insert(pos int64, text string) error {
	v.beginFrame()
	if err := v.store.Insert(pos, text); err != nil {
		return err
	}
	v.afterEdit(pos + int64(len(text)))
	return nil
}

// Delete removes r and moves the cursor to its start.
func (v *View) Delete(r buffer.ByteRange) error {
	v.beginFrame()
	r = buffer.NormalizeRange(r)
	if err := v.store.Delete(r); err != nil {
		return err
	}
	v.afterEdit(r.Start)
	return nil
}

// InsertAtCursor inserts text at the cursor, replacing the selection.
func (v *View) InsertAtCursor(text string) error {
	v.beginFrame()
	r, ok := v.cursor.Selection()
	if !ok {
		r = buffer.ByteRange{Start: v.cursor.Position, End: v.cursor.Position}
	}
	if err := v.store.Replace(r, text); err != nil {
		return err
	}
	v.afterEdit(r.Start + int64(len(text)))
	return nil
}

// DeleteBackward deletes the selection, or the grapheme cluster before
// the cursor.
func (v *View) DeleteBackward() error {
	v.beginFrame()
	return v.deleteFrom(v.store.PrevGrapheme)
}

// DeleteForward deletes the selection, or the grapheme cluster after
// the cursor.
func (v *View) DeleteForward() error {
	v.beginFrame()
	return v.deleteFrom(v.store.NextGrapheme)
}

func (v *View) deleteFrom(step func(int64) (int64, error)) error {
	r, ok := v.cursor.Selection()
	if !ok {
		other, err := step(v.cursor.Position)
		if err != nil {
			return err
		}
		r = buffer.NormalizeRange(buffer.ByteRange{Start: v.cursor.Position, End: other})
		if r.IsEmpty() {
			return nil
		}
	}
	if err := v.store.Delete(r); err != nil {
		return err
	}
	v.afterEdit(r.Start)
	return nil
}

// SelectedText returns the bytes of the selection.
func (v *View) SelectedText() (string, error) {
	r, ok := v.cursor.Selection()
	if !ok {
		return "", nil
	}
	b, err := v.store.Read(r)
	return string(b), err
}

func (v *View) afterEdit(cursor int64) {
	v.sync()
	v.cursor = Cursor{Position: clampInt64(cursor, 0, v.store.Len()), Anchor: NoSource, PreferredColumn: -1}
	v.ensureVisible(v.cursor.Position)
}
