package view

import "go.uber.org/zap"

const (
	DefaultScrollMargin     = 3
	DefaultHorizontalMargin = 5

	defaultBytesPerLine = 80
)

// Config configures a View.
type Config struct {
	Width  int
	Height int

	WrapMode WrapMode

	// ScrollMargin is the number of lines kept between the cursor and the
	// top or bottom edge, capped at half the height. Negative disables it.
	ScrollMargin int
	// HorizontalMargin is the number of columns kept beside the cursor
	// when wrapping is off. Negative disables it.
	HorizontalMargin int

	Transform   Transform
	Highlighter Highlighter
	Logger      *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.ScrollMargin == 0 {
		c.ScrollMargin = DefaultScrollMargin
	}
	if c.ScrollMargin < 0 {
		c.ScrollMargin = 0
	}
	if c.HorizontalMargin == 0 {
		c.HorizontalMargin = DefaultHorizontalMargin
	}
	if c.HorizontalMargin < 0 {
		c.HorizontalMargin = 0
	}
	if c.Width < 0 {
		c.Width = 0
	}
	if c.Height < 0 {
		c.Height = 0
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
