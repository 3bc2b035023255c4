// Package view turns a buffer.Store into display lines for one split.
//
// A frame flows Store -> BuildTokens -> Gate (optional transform) ->
// BuildLayout -> Viewport/Cursor. Positions are source byte offsets;
// display coordinates are (view line, cell column), where view lines are
// counted across the whole document and may include injected lines.
package view
