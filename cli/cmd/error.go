package cmd

import "github.com/ardnew/refill/ref"

// Predefined errors (sentinel values).
var (
	ErrWriteConfig   = ref.NewError("write configuration file")
	ErrFileExists    = ref.NewError("file exists (use --force to overwrite)")
	ErrStdinReused   = ref.NewError("standard input requested more than once")
	ErrNotDescriptor = ref.NewError("not a reference descriptor")
)
