package grapheme

import "testing"

const family = "\U0001F468\u200d\U0001F469\u200d\U0001F467"

func TestSplitAndCount_MultiRuneGraphemes(t *testing.T) {
	text := "a" + "é" + family + "b"
	got := Split(text)
	if len(got) != 4 {
		t.Fatalf("split len=%d, want %d", len(got), 4)
	}
	if got[1] != "é" {
		t.Fatalf("split[1]=%q, want %q", got[1], "é")
	}
	if got[2] != family {
		t.Fatalf("split[2]=%q, want family emoji", got[2])
	}
	if c := Count(text); c != 4 {
		t.Fatalf("count=%d, want %d", c, 4)
	}
}

func TestFirstLenAndLastStart(t *testing.T) {
	b := []byte("é" + family)
	if got, want := FirstLen(b), len("é"); got != want {
		t.Fatalf("first len=%d, want %d", got, want)
	}
	if got, want := LastStart(b), len("é"); got != want {
		t.Fatalf("last start=%d, want %d", got, want)
	}
	if got := FirstLen([]byte{0xff, 'a'}); got != 1 {
		t.Fatalf("invalid byte cluster len=%d, want 1", got)
	}
	if got := LastStart(nil); got != 0 {
		t.Fatalf("last start of empty=%d, want 0", got)
	}
}

func TestWidth(t *testing.T) {
	if got := Width("a"); got != 1 {
		t.Fatalf("width(a)=%d, want 1", got)
	}
	if got := Width("界"); got != 2 {
		t.Fatalf("width(wide)=%d, want 2", got)
	}
}

func TestClassifiers(t *testing.T) {
	if !IsSpace("\t") {
		t.Fatalf("tab should be space")
	}
	if IsSpace("a") {
		t.Fatalf("letter should not be space")
	}
	if !IsPunct("!") {
		t.Fatalf("exclamation should be punct")
	}
	if IsPunct("a") {
		t.Fatalf("letter should not be punct")
	}
}
