package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	v := m.view

	// Paste events insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		m.insert(string(msg.Runes))
		return m, nil
	}

	km := m.cfg.KeyMap
	switch {
	case key.Matches(msg, km.Left):
		v.MoveLeft(false)
	case key.Matches(msg, km.Right):
		v.MoveRight(false)
	case key.Matches(msg, km.Up):
		v.MoveUp(false)
	case key.Matches(msg, km.Down):
		v.MoveDown(false)

	case key.Matches(msg, km.ShiftLeft):
		v.MoveLeft(true)
	case key.Matches(msg, km.ShiftRight):
		v.MoveRight(true)
	case key.Matches(msg, km.ShiftUp):
		v.MoveUp(true)
	case key.Matches(msg, km.ShiftDown):
		v.MoveDown(true)

	case key.Matches(msg, km.WordLeft):
		v.MoveWordLeft(false)
	case key.Matches(msg, km.WordRight):
		v.MoveWordRight(false)
	case key.Matches(msg, km.ShiftWordLeft):
		v.MoveWordLeft(true)
	case key.Matches(msg, km.ShiftWordRight):
		v.MoveWordRight(true)

	case key.Matches(msg, km.Home):
		v.MoveLineStart(false)
	case key.Matches(msg, km.End):
		v.MoveLineEnd(false)
	case key.Matches(msg, km.ShiftHome):
		v.MoveLineStart(true)
	case key.Matches(msg, km.ShiftEnd):
		v.MoveLineEnd(true)

	case key.Matches(msg, km.PageUp):
		v.PageUp(false)
	case key.Matches(msg, km.PageDown):
		v.PageDown(false)
	case key.Matches(msg, km.DocStart):
		v.MoveDocStart(false)
	case key.Matches(msg, km.DocEnd):
		v.MoveDocEnd(false)

	case key.Matches(msg, km.Backspace):
		if !m.cfg.ReadOnly {
			m.logEditErr("delete backward", v.DeleteBackward())
		}
	case key.Matches(msg, km.Delete):
		if !m.cfg.ReadOnly {
			m.logEditErr("delete forward", v.DeleteForward())
		}
	case key.Matches(msg, km.Enter):
		m.insert(m.newline())

	case key.Matches(msg, km.Copy):
		m.copySelection()
	case key.Matches(msg, km.Cut):
		m.copySelection()
		if _, ok := v.Selection(); ok && !m.cfg.ReadOnly {
			m.logEditErr("cut", v.DeleteBackward())
		}
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()

	default:
		switch {
		case msg.Type == tea.KeyTab:
			m.insert("\t")
		case msg.Type == tea.KeySpace:
			m.insert(" ")
		case msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt:
			m.insert(string(msg.Runes))
		}
	}
	m.syncSize()
	return m, nil
}

func (m Model) insert(text string) {
	if m.cfg.ReadOnly || text == "" {
		return
	}
	m.logEditErr("insert", m.view.InsertAtCursor(text))
}

func (m Model) newline() string {
	switch m.view.Store().LineEnding() {
	case buffer.LineEndingCRLF:
		return "\r\n"
	case buffer.LineEndingCR:
		return "\r"
	}
	return "\n"
}

func (m Model) logEditErr(op string, err error) {
	if err != nil {
		m.log.Debug("edit rejected", zap.String("op", op), zap.Error(err))
	}
}

func (m Model) copySelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	s, err := m.view.SelectedText()
	if err != nil || s == "" {
		return
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log.Warn("clipboard write failed", zap.Error(err))
	}
}

func (m Model) pasteClipboard() {
	if m.cfg.Clipboard == nil || m.cfg.ReadOnly {
		return
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil {
		m.log.Warn("clipboard read failed", zap.Error(err))
		return
	}
	// Normalize newlines from external sources.
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if nl := m.newline(); nl != "\n" {
		s = strings.ReplaceAll(s, "\n", nl)
	}
	m.insert(s)
}

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.view.Scroll(-int64(m.cfg.WheelLines))
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.view.Scroll(int64(m.cfg.WheelLines))
		return m, nil
	}
	if !m.focused {
		return m, nil
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.inBounds(msg.X, msg.Y) {
			return m, nil
		}
		if off, ok := m.view.ScreenToDoc(msg.X-m.gutterWidth(), msg.Y); ok {
			m.view.SetCursor(off, msg.Shift)
		}
		m.dragging = true
	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		if off, ok := m.view.ScreenToDoc(msg.X-m.gutterWidth(), msg.Y); ok {
			m.view.SetCursor(off, true)
		}
	case tea.MouseActionRelease:
		m.dragging = false
	}
	return m, nil
}

func (m Model) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}
