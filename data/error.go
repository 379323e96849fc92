package data

import "github.com/ardnew/refill/ref"

// Predefined errors (sentinel values).
var (
	ErrDecode        = ref.NewError("decode failed")
	ErrEncode        = ref.NewError("encode failed")
	ErrUnknownFormat = ref.NewError("unknown data format")
	ErrNotMapping    = ref.NewError("top-level value is not a mapping")
	ErrDefinition    = ref.NewError("invalid definition")
	ErrExprCompile   = ref.NewError("expression compile failed")
	ErrExprEvaluate  = ref.NewError("expression evaluation failed")
)
