package view

import "errors"

// ErrLayoutInconsistency reports a layout that breaks its own mapping
// invariants. It is a programming error: builds with the loomdebug tag
// panic with it, others log it and fall back to a minimal layout.
var ErrLayoutInconsistency = errors.New("layout inconsistency")

// ErrUnknownView is returned by Registry lookups for closed or unknown ids.
var ErrUnknownView = errors.New("unknown view")
