package buffer

// AppliedEdit describes one effective edit in a change. Range is in
// offsets before the edit.
type AppliedEdit struct {
	Range      ByteRange
	InsertText string
}

// Change is a versioned record of one committed mutation.
type Change struct {
	VersionBefore uint64
	VersionAfter  uint64
	AppliedEdits  []AppliedEdit
}

// MapOffset moves off from before the edit to after it. Offsets inside a
// deleted range collapse to its start; an offset at an insertion point
// stays before the inserted text.
func (e AppliedEdit) MapOffset(off int64) int64 {
	switch {
	case off <= e.Range.Start:
		return off
	case off >= e.Range.End:
		return off - e.Range.Len() + int64(len(e.InsertText))
	default:
		return e.Range.Start
	}
}

// MapOffset applies every edit of c to off in order.
func (c Change) MapOffset(off int64) int64 {
	for _, e := range c.AppliedEdits {
		off = e.MapOffset(off)
	}
	return off
}

type changeLog struct {
	limit   int
	entries []Change
}

func (l *changeLog) push(c Change) {
	l.entries = append(l.entries, c)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
}

type changeBuilder struct {
	versionBefore uint64
	appliedEdits  []AppliedEdit
}

func (s *Store) beginChange() changeBuilder {
	return changeBuilder{versionBefore: s.version}
}

func (cb *changeBuilder) addAppliedEdit(edit AppliedEdit) {
	edit.Range = NormalizeRange(edit.Range)
	cb.appliedEdits = append(cb.appliedEdits, edit)
}

func (s *Store) commitChange(cb changeBuilder) {
	if len(cb.appliedEdits) == 0 {
		return
	}
	s.version++
	s.changes.push(Change{
		VersionBefore: cb.versionBefore,
		VersionAfter:  s.version,
		AppliedEdits:  cb.appliedEdits,
	})
}

// LastChange returns the most recent committed change.
func (s *Store) LastChange() (Change, bool) {
	if len(s.changes.entries) == 0 {
		return Change{}, false
	}
	return cloneChange(s.changes.entries[len(s.changes.entries)-1]), true
}

// ChangesSince returns the changes committed after version v, oldest
// first. ok is false when the log no longer reaches back to v.
func (s *Store) ChangesSince(v uint64) (changes []Change, ok bool) {
	if v == s.version {
		return nil, true
	}
	if v > s.version {
		return nil, false
	}
	for i, c := range s.changes.entries {
		if c.VersionBefore == v {
			out := make([]Change, 0, len(s.changes.entries)-i)
			for _, e := range s.changes.entries[i:] {
				out = append(out, cloneChange(e))
			}
			return out, true
		}
	}
	return nil, false
}

func cloneChange(in Change) Change {
	out := in
	out.AppliedEdits = append([]AppliedEdit(nil), in.AppliedEdits...)
	return out
}
