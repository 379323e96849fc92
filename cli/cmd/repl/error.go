package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds   = errors.New("index out of range")
	ErrNotDescriptor = errors.New("not a reference descriptor")
)
