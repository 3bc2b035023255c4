package view

import (
	"errors"
	"testing"

	"github.com/iw2rmb/loom/buffer"
)

func TestRegistry_ViewsShareStoreButNotViewport(t *testing.T) {
	s := buffer.New("a\nb\nc\nd\n", buffer.Options{})
	r := NewRegistry()
	id1, v1 := r.Open(s, Config{Width: 10, Height: 2})
	id2, _ := r.Open(s, Config{Width: 10, Height: 2})
	if id1 == id2 {
		t.Fatalf("ids collide: %d", id1)
	}

	v1.Scroll(2)
	got1, err := r.ViewportContent(id1)
	if err != nil {
		t.Fatalf("ViewportContent(%d): %v", id1, err)
	}
	got2, err := r.ViewportContent(id2)
	if err != nil {
		t.Fatalf("ViewportContent(%d): %v", id2, err)
	}
	if a, b := lineTexts(got1), lineTexts(got2); !equalLines(a, []string{"c", "d"}) || !equalLines(b, []string{"a", "b"}) {
		t.Fatalf("contents: got %q and %q", a, b)
	}
	if n := len(r.ViewsOf(s)); n != 2 {
		t.Fatalf("ViewsOf: got %d, want 2", n)
	}
}

func TestRegistry_UnknownView(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Open(buffer.New("", buffer.Options{}), Config{Width: 1, Height: 1})
	if err := r.Close(id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.ViewportContent(id); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("ViewportContent after Close: got %v, want ErrUnknownView", err)
	}
	if err := r.Close(id); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("second Close: got %v, want ErrUnknownView", err)
	}
	if ids := r.IDs(); len(ids) != 0 {
		t.Fatalf("IDs after Close: got %v", ids)
	}
}
