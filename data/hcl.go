package data

import (
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclFunctions are the functions callable from HCL attribute expressions.
var hclFunctions = map[string]function.Function{
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"join":     stdlib.JoinFunc,
	"split":    stdlib.SplitFunc,
	"concat":   stdlib.ConcatFunc,
	"format":   stdlib.FormatFunc,
	"length":   stdlib.LengthFunc,
	"min":      stdlib.MinFunc,
	"max":      stdlib.MaxFunc,
	"coalesce": stdlib.CoalesceFunc,
}

// decodeHCL decodes an HCL body consisting only of attributes.
//
// Top-level attributes keep their source order. Object keys nested inside
// attribute values are ordered lexically. Expressions may refer to the
// process environment as env.NAME and call the functions in hclFunctions.
func decodeHCL(src []byte, filename string, processEnv []string) (any, error) {
	if filename == "" {
		filename = "input.hcl"
	}

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, ErrDecode.Wrap(diags).With(slog.String("format", "hcl"))
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, ErrDecode.Wrap(diags).With(slog.String("format", "hcl"))
	}

	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		sorted = append(sorted, a)
	}

	slices.SortFunc(sorted, func(a, b *hcl.Attribute) int {
		return a.Range.Start.Byte - b.Range.Start.Byte
	})

	ectx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envObject(processEnv)},
		Functions: hclFunctions,
	}

	out := make(yaml.MapSlice, 0, len(sorted))

	for _, a := range sorted {
		val, diags := a.Expr.Value(ectx)
		if diags.HasErrors() {
			return nil, ErrDecode.Wrap(diags).With(slog.String("attribute", a.Name))
		}

		v, err := fromCty(val)
		if err != nil {
			return nil, ErrDecode.Wrap(err).With(slog.String("attribute", a.Name))
		}

		out = append(out, yaml.MapItem{Key: a.Name, Value: v})
	}

	return out, nil
}

func envObject(processEnv []string) cty.Value {
	vars := make(map[string]cty.Value, len(processEnv))

	for _, kv := range processEnv {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}

	return cty.ObjectVal(vars)
}

// fromCty converts an HCL value to the types produced by [Decode].
func fromCty(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}

	ty := val.Type()

	switch {
	case ty == cty.String:
		return val.AsString(), nil

	case ty == cty.Bool:
		return val.True(), nil

	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}

		f, _ := bf.Float64()

		return f, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(yaml.MapSlice, 0, val.LengthInt())

		for it := val.ElementIterator(); it.Next(); {
			k, e := it.Element()

			v, err := fromCty(e)
			if err != nil {
				return nil, err
			}

			out = append(out, yaml.MapItem{Key: k.AsString(), Value: v})
		}

		return out, nil

	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())

		for it := val.ElementIterator(); it.Next(); {
			_, e := it.Element()

			v, err := fromCty(e)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
