package buffer

import "testing"

func TestStore_GraphemeSteps(t *testing.T) {
	const family = "\U0001F468\u200d\U0001F469\u200d\U0001F467"
	s := New("a"+family+"\u00e9\r\nz", Options{})

	var got []int64
	for pos := int64(0); pos < s.Len(); {
		next, err := s.NextGrapheme(pos)
		if err != nil {
			t.Fatalf("next at %d: %v", pos, err)
		}
		got = append(got, next)
		pos = next
	}
	fl := int64(len(family))
	want := []int64{1, 1 + fl, 1 + fl + 2, 1 + fl + 4, 1 + fl + 5}
	if len(got) != len(want) {
		t.Fatalf("steps=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("steps=%v, want %v", got, want)
		}
	}

	for i := len(want) - 1; i > 0; i-- {
		prev, err := s.PrevGrapheme(want[i])
		if err != nil || prev != want[i-1] {
			t.Fatalf("PrevGrapheme(%d)=%d,%v, want %d", want[i], prev, err, want[i-1])
		}
	}
	if prev, _ := s.PrevGrapheme(1); prev != 0 {
		t.Fatalf("PrevGrapheme(1)=%d, want 0", prev)
	}
}

func TestStore_WordBoundaries(t *testing.T) {
	s := New("foo  bar\nbaz", Options{})
	cases := []struct {
		name string
		fn   func(int64) (int64, error)
		in   int64
		want int64
	}{
		{"next from start", s.NextWordBoundary, 0, 3},
		{"next over spaces", s.NextWordBoundary, 3, 8},
		{"next at line end", s.NextWordBoundary, 8, 9},
		{"next in last line", s.NextWordBoundary, 9, 12},
		{"prev from word end", s.PrevWordBoundary, 8, 5},
		{"prev over spaces", s.PrevWordBoundary, 5, 0},
		{"prev at line start", s.PrevWordBoundary, 9, 8},
	}
	for _, tc := range cases {
		got, err := tc.fn(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("%s: got %d,%v, want %d", tc.name, got, err, tc.want)
		}
	}
}
