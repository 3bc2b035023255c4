package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/view"
)

func (m Model) render() string {
	v := m.view
	m.syncSize()
	lines := v.ViewportContent()
	cx, cy, cursorOK := v.CursorScreen()
	cursorOK = cursorOK && m.focused
	sel, selOK := v.Selection()

	cursorLine := int64(-1)
	if n, err := v.Store().LineOf(v.Cursor().Position); err == nil {
		cursorLine = n + 1
	}

	out := make([]string, 0, len(lines))
	for row, dl := range lines {
		var sb strings.Builder
		m.renderGutter(&sb, dl.LineNumber, m.focused && dl.LineNumber == cursorLine)
		col := -1
		if cursorOK && row == cy {
			col = cx
		}
		m.renderLine(&sb, dl, col, sel, selOK)
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}

// renderLine writes the chars of dl, merging runs that share a style.
// cursorCol is the cell holding the cursor, or -1.
func (m Model) renderLine(sb *strings.Builder, dl view.DisplayLine, cursorCol int, sel buffer.ByteRange, selOK bool) {
	var run strings.Builder
	var runStyle lipgloss.Style
	runOpen := false
	flush := func() {
		if runOpen && run.Len() > 0 {
			sb.WriteString(runStyle.Render(run.String()))
		}
		run.Reset()
		runOpen = false
	}

	cell := 0
	for _, c := range dl.Chars {
		st := m.charStyle(c, selOK && c.Source >= 0 && sel.Contains(c.Source))
		if cell == cursorCol {
			st = m.cfg.Style.Cursor.Inherit(st)
			flush()
			sb.WriteString(st.Render(c.Text))
			cell += c.Width
			continue
		}
		if runOpen && !sameStyle(st, runStyle) {
			flush()
		}
		if !runOpen {
			runStyle, runOpen = st, true
		}
		run.WriteString(c.Text)
		cell += c.Width
	}
	flush()
	if cursorCol >= cell {
		sb.WriteString(m.cfg.Style.Cursor.Render(" "))
	}
}

func (m Model) charStyle(c view.Char, selected bool) lipgloss.Style {
	st := m.cfg.Style.Text
	switch {
	case c.Style != "" && m.cfg.StyleForKey != nil:
		st = m.cfg.StyleForKey(c.Style).Inherit(st)
	case c.Source < 0:
		st = m.cfg.Style.Virtual.Inherit(st)
	}
	if selected {
		st = m.cfg.Style.Selection.Inherit(st)
	}
	return st
}

// sameStyle compares styles by what they render.
func sameStyle(a, b lipgloss.Style) bool {
	return a.Render("x") == b.Render("x")
}
