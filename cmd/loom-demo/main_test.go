package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/tui"
)

func newDemo(t *testing.T, txt string) model {
	t.Helper()
	store := buffer.New(txt, buffer.Options{})
	m := newModel(tui.New(store, tui.Config{}).Focus(), "test")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	return next.(model)
}

func send(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func storeText(m model) string {
	s := m.editor.Store()
	b, _ := s.Read(buffer.ByteRange{Start: 0, End: s.Len()})
	return string(b)
}

func TestHelpPopup_ToggleAndClose(t *testing.T) {
	m := newDemo(t, "hello\n")
	if strings.Contains(m.View(), "document start") {
		t.Fatalf("help visible before toggle")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.showHelp {
		t.Fatalf("showHelp after ctrl+g: got false, want true")
	}
	out := m.View()
	for _, want := range []string{"document start", "ctrl+q", "hello"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view with help: missing %q in\n%s", want, out)
		}
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp || strings.Contains(m.View(), "document start") {
		t.Fatalf("help still visible after esc")
	}
}

func TestHelpPopup_SwallowsEditingKeys(t *testing.T) {
	m := newDemo(t, "hello\n")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if got := storeText(m); got != "hello\n" {
		t.Fatalf("text with help open: got %q, want %q", got, "hello\n")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if got := storeText(m); got != "xhello\n" {
		t.Fatalf("text after closing help: got %q, want %q", got, "xhello\n")
	}
}

func TestHelpPopup_FitsSmallScreen(t *testing.T) {
	m := newDemo(t, "hello\n")
	m = send(m, tea.WindowSizeMsg{Width: 30, Height: 8})
	if m.helpView.Height > 8 || m.helpView.Width > 30 {
		t.Fatalf("help viewport %dx%d exceeds 30x8", m.helpView.Width, m.helpView.Height)
	}
}

func TestHelpText_GroupsBindings(t *testing.T) {
	got := helpText(tui.DefaultKeyMap().FullHelp())
	if !strings.Contains(got, "\n\n") {
		t.Fatalf("groups not separated:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("trailing newline in help text")
	}
	if !strings.Contains(got, "ctrl+v") || !strings.Contains(got, "paste") {
		t.Fatalf("paste binding missing:\n%s", got)
	}
}
