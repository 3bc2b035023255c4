// Package loom holds the module version. The text store lives in
// buffer, the layout engine in view, and the terminal component in tui.
package loom

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the module version in SemVer form, without a leading v.
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag returns the git tag form of Version.
func VersionTag() string {
	return "v" + Version()
}
