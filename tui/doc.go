// Package tui is a Bubble Tea component that renders a view.View and
// drives it from keyboard and mouse input.
package tui
