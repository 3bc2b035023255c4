package tui

import (
	"fmt"
	"strings"
)

// gutterWidth is the line-number column width plus one separator cell,
// or 0 when numbers are off or unknown. Documents with lone CRs are
// unnumbered.
func (m Model) gutterWidth() int {
	if !m.cfg.ShowLineNums {
		return 0
	}
	store := m.view.Store()
	n, err := store.LineCount()
	if err != nil || store.HasLoneCR() {
		return 0
	}
	return gutterDigits(n) + 1
}

func gutterDigits(lineCount int64) int {
	if lineCount < 1 {
		lineCount = 1
	}
	return len(fmt.Sprintf("%d", lineCount))
}

func (m Model) renderGutter(sb *strings.Builder, lineNumber int64, active bool) {
	w := m.gutterWidth()
	if w == 0 {
		return
	}
	digits := w - 1
	if lineNumber <= 0 {
		sb.WriteString(m.cfg.Style.LineNum.Render(strings.Repeat(" ", digits)))
		sb.WriteString(m.cfg.Style.Gutter.Render(" "))
		return
	}
	st := m.cfg.Style.LineNum
	if active {
		st = m.cfg.Style.LineNumActive
	}
	sb.WriteString(st.Render(fmt.Sprintf("%*d", digits, lineNumber)))
	sb.WriteString(m.cfg.Style.Gutter.Render(" "))
}
