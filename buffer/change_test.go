package buffer

import "testing"

func TestStore_LastChangeRecordsEdit(t *testing.T) {
	s := New("hello", Options{})
	if _, ok := s.LastChange(); ok {
		t.Fatalf("expected no change before edits")
	}
	if err := s.Replace(ByteRange{Start: 1, End: 3}, "EY"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	c, ok := s.LastChange()
	if !ok {
		t.Fatalf("expected change")
	}
	if c.VersionBefore != 0 || c.VersionAfter != 1 {
		t.Fatalf("versions=%d->%d, want 0->1", c.VersionBefore, c.VersionAfter)
	}
	if len(c.AppliedEdits) != 1 {
		t.Fatalf("edits=%d, want 1", len(c.AppliedEdits))
	}
	want := AppliedEdit{Range: ByteRange{Start: 1, End: 3}, InsertText: "EY"}
	if c.AppliedEdits[0] != want {
		t.Fatalf("edit=%+v, want %+v", c.AppliedEdits[0], want)
	}
}

func TestStore_ChangesSince(t *testing.T) {
	s := New("abc", Options{ChangeLogLimit: 2})
	_ = s.Insert(0, "x")
	_ = s.Insert(0, "y")
	_ = s.Insert(0, "z")

	changes, ok := s.ChangesSince(1)
	if !ok || len(changes) != 2 {
		t.Fatalf("ChangesSince(1)=%d,%v, want 2,true", len(changes), ok)
	}
	if changes[0].VersionBefore != 1 || changes[1].VersionAfter != 3 {
		t.Fatalf("unexpected versions: %+v", changes)
	}
	if _, ok := s.ChangesSince(0); ok {
		t.Fatalf("ChangesSince(0) should be truncated with limit 2")
	}
	if changes, ok := s.ChangesSince(3); !ok || len(changes) != 0 {
		t.Fatalf("ChangesSince(current)=%v,%v", changes, ok)
	}
}

func TestAppliedEdit_MapOffset(t *testing.T) {
	e := AppliedEdit{Range: ByteRange{Start: 4, End: 8}, InsertText: "xy"}
	cases := []struct {
		in, want int64
	}{
		{0, 0},
		{4, 4},
		{5, 4},
		{7, 4},
		{8, 6},
		{10, 8},
	}
	for _, tc := range cases {
		if got := e.MapOffset(tc.in); got != tc.want {
			t.Fatalf("MapOffset(%d)=%d, want %d", tc.in, got, tc.want)
		}
	}

	ins := AppliedEdit{Range: ByteRange{Start: 3, End: 3}, InsertText: "abc"}
	if got := ins.MapOffset(3); got != 3 {
		t.Fatalf("insertion point moved to %d", got)
	}
	if got := ins.MapOffset(4); got != 7 {
		t.Fatalf("MapOffset(4)=%d, want 7", got)
	}
}
