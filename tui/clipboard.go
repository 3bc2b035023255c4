package tui

import "github.com/atotto/clipboard"

// Clipboard provides clipboard integration.
//
// Errors must not crash the UI; failures are logged and ignored.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// SystemClipboard uses the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) { return clipboard.ReadAll() }
func (SystemClipboard) WriteText(s string) error  { return clipboard.WriteAll(s) }

// SystemClipboardAvailable reports whether a system clipboard utility
// was found.
func SystemClipboardAvailable() bool { return !clipboard.Unsupported }
