package tui

import (
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/view"
)

// Config configures the Model.
type Config struct {
	// View is forwarded to view.New; Width and Height are set by SetSize.
	View view.Config

	ShowLineNums bool
	ReadOnly     bool

	Style       Style
	StyleForKey StyleForKey
	KeyMap      KeyMap
	Clipboard   Clipboard

	// Ready, when set, signals that asynchronously loaded content
	// arrived; the model refreshes its view on each signal.
	Ready <-chan struct{}

	// WheelLines is the number of lines a mouse wheel step scrolls.
	WheelLines int

	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.WheelLines <= 0 {
		c.WheelLines = 3
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.View.Logger == nil {
		c.View.Logger = c.Logger
	}
	if len(c.KeyMap.Left.Keys()) == 0 {
		c.KeyMap = DefaultKeyMap()
	}
	return c
}
