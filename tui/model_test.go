package tui

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/view"
)

type memClipboard struct {
	s string
}

func (c *memClipboard) ReadText() (string, error) { return c.s, nil }
func (c *memClipboard) WriteText(s string) error  { c.s = s; return nil }

func text(m Model) string {
	s := m.Store()
	b, _ := s.Read(buffer.ByteRange{Start: 0, End: s.Len()})
	return string(b)
}

func newModel(t *testing.T, txt string, cfg Config) Model {
	t.Helper()
	m := New(buffer.New(txt, buffer.Options{}), cfg)
	return m.SetSize(20, 5)
}

func TestUpdate_TypingMovementAndDelete(t *testing.T) {
	m := newModel(t, "ab", Config{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	if got := text(m); got != "aXb" {
		t.Fatalf("text after insert: got %q, want %q", got, "aXb")
	}
	if got := m.Core().Cursor().Position; got != 2 {
		t.Fatalf("cursor after insert: got %d, want 2", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := text(m); got != "ab" {
		t.Fatalf("text after backspace: got %q, want %q", got, "ab")
	}
	if got := m.Core().Cursor().Position; got != 1 {
		t.Fatalf("cursor after backspace: got %d, want 1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := text(m); got != "a\nb" {
		t.Fatalf("text after enter: got %q, want %q", got, "a\nb")
	}
}

func TestUpdate_EnterKeepsCRLF(t *testing.T) {
	m := newModel(t, "a\r\nb\r\n", Config{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := text(m); got != "a\r\n\r\nb\r\n" {
		t.Fatalf("text after enter: got %q", got)
	}
}

func TestUpdate_ReadOnly_IgnoresMutations(t *testing.T) {
	m := newModel(t, "ab", Config{ReadOnly: true})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Core().Cursor().Position; got != 1 {
		t.Fatalf("cursor after move: got %d, want 1", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := text(m); got != "ab" {
		t.Fatalf("text in read-only: got %q, want %q", got, "ab")
	}
}

func TestUpdate_CopyCutPaste(t *testing.T) {
	clip := &memClipboard{}
	m := newModel(t, "abc", Config{Clipboard: clip})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if clip.s != "ab" {
		t.Fatalf("clipboard after copy: got %q, want %q", clip.s, "ab")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if got := text(m); got != "c" {
		t.Fatalf("text after cut: got %q, want %q", got, "c")
	}
	clip.s = "x\r\ny"
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if got := text(m); got != "x\nyc" {
		t.Fatalf("text after paste: got %q, want %q", got, "x\nyc")
	}
}

func TestUpdate_PasteEventInsertsLiterally(t *testing.T) {
	m := newModel(t, "", Config{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ctrl+c"), Paste: true})
	if got := text(m); got != "ctrl+c" {
		t.Fatalf("text after paste event: got %q", got)
	}
}

func TestUpdate_MouseClickAndWheel(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "row %02d\n", i)
	}
	m := newModel(t, "hello\nworld\n"+sb.String(), Config{})

	m, _ = m.Update(tea.MouseMsg{X: 2, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{X: 2, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if got := m.Core().Cursor().Position; got != 8 {
		t.Fatalf("cursor after click: got %d, want 8", got)
	}

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.Core().Viewport().TopViewLine; got != 3 {
		t.Fatalf("top after wheel: got %d, want 3", got)
	}
}

func TestUpdate_ReadySignalRefreshes(t *testing.T) {
	ch := make(chan struct{}, 1)
	m := newModel(t, "ab", Config{Ready: ch})
	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("Init: got nil cmd with a Ready channel")
	}
	ch <- struct{}{}
	msg := cmd()
	if _, ok := msg.(readyMsg); !ok {
		t.Fatalf("Init cmd: got %T, want readyMsg", msg)
	}
	if _, next := m.Update(msg); next == nil {
		t.Fatalf("Update(readyMsg): got nil cmd, want next wait")
	}
}

func TestRender_LineNumberAlignment_1To120(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("x")
	}

	m := New(buffer.New(sb.String(), buffer.Options{}), Config{ShowLineNums: true})
	m = m.Blur()
	m = m.SetSize(10, 120)

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 120 {
		t.Fatalf("expected 120 lines, got %d", len(lines))
	}
	for i, line := range lines {
		wantPrefix := fmt.Sprintf("%3d x", i+1)
		if !strings.HasPrefix(line, wantPrefix) {
			t.Fatalf("line %d prefix: got %q, want prefix %q", i+1, line, wantPrefix)
		}
	}
}

func TestRender_CursorCell(t *testing.T) {
	m := New(buffer.New("ab", buffer.Options{}), Config{
		Style: Style{Text: lipgloss.NewStyle(), Cursor: lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)},
	})
	m = m.SetSize(10, 1)

	if got, want := m.View(), " a b"; got != want {
		t.Fatalf("cursor rendering:\n got: %q\nwant: %q", got, want)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	if got, want := m.View(), "ab   "; got != want {
		t.Fatalf("cursor past end:\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_HighlightStyles(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	r.SetHasDarkBackground(true)

	st := Style{Text: r.NewStyle()}
	under := r.NewStyle().Underline(true)
	m := New(buffer.New("abcd", buffer.Options{}), Config{
		Style: st,
		View: view.Config{Highlighter: view.HighlighterFunc(func(buffer.ByteRange) []view.HighlightSpan {
			return []view.HighlightSpan{{Range: buffer.ByteRange{Start: 1, End: 3}, Style: "kw"}}
		})},
		StyleForKey: func(k view.StyleKey) lipgloss.Style {
			if k == "kw" {
				return under
			}
			return r.NewStyle()
		},
	})
	m = m.SetSize(10, 1)
	m = m.Blur()

	got := m.View()
	want := st.Text.Render("a") + under.Inherit(st.Text).Render("bc") + st.Text.Render("d")
	if got != want {
		t.Fatalf("highlighted render:\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_VirtualTextStyle(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)

	st := Style{Text: r.NewStyle(), Virtual: r.NewStyle().Italic(true)}
	suffix := view.TransformFunc(func(base []view.Token, _ view.ViewportHint) (view.TransformResult, bool) {
		return view.TransformResult{Tokens: append(base, view.Synthetic("!", ""))}, true
	})
	m := New(buffer.New("ab", buffer.Options{}), Config{Style: st, View: view.Config{Transform: suffix}})
	m = m.SetSize(10, 1).Blur()

	want := st.Text.Render("ab") + st.Virtual.Inherit(st.Text).Render("!")
	if got := m.View(); got != want {
		t.Fatalf("virtual render:\n got: %q\nwant: %q", got, want)
	}
}
