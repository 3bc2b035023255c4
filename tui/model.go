package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/view"
)

// Model is a Bubble Tea component over one view of a Store. Copies of a
// Model share the underlying view.
type Model struct {
	cfg  Config
	view *view.View
	log  *zap.Logger

	focused bool
	width   int
	height  int

	dragging bool
}

// readyMsg reports that the loader delivered content.
type readyMsg struct{}

func New(store *buffer.Store, cfg Config) Model {
	cfg = cfg.withDefaults()
	return Model{
		cfg:     cfg,
		view:    view.New(store, cfg.View),
		log:     cfg.Logger,
		focused: true,
	}
}

func (m Model) View() string { return m.render() }

// Core returns the underlying view.
func (m Model) Core() *view.View { return m.view }

func (m Model) Store() *buffer.Store { return m.view.Store() }

func (m Model) Init() tea.Cmd { return m.waitReady() }

func (m Model) waitReady() tea.Cmd {
	ch := m.cfg.Ready
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return readyMsg{}
	}
}

func (m Model) SetSize(width, height int) Model {
	m.width, m.height = maxInt(width, 0), maxInt(height, 0)
	m.syncSize()
	m.view.EnsureVisible()
	return m
}

// syncSize gives the view the width left after the gutter, which grows
// with the line count.
func (m Model) syncSize() {
	m.view.SetSize(maxInt(m.width-m.gutterWidth(), 0), m.height)
}

func (m Model) Focus() Model {
	m.focused = true
	m.view.EnsureVisible()
	return m
}

func (m Model) Blur() Model {
	m.focused = false
	return m
}

func (m Model) Focused() bool { return m.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case readyMsg:
		m.view.Refresh()
		return m, m.waitReady()
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
