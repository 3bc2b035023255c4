//go:build !loomdebug

package view

const debugLayout = false
