// Package highlight computes syntax highlight spans for a buffer.Store
// with Chroma lexers, detects languages with go-enry, and resolves the
// resulting style keys to lipgloss styles.
package highlight
