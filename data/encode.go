package data

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/ref"
)

// DefaultIndent is the indent width used when a non-positive width is given.
const DefaultIndent = 2

// Encode writes tree to w in format f.
//
// Mapping order is preserved in every format. Invocables and Go functions
// are written as their description, e.g. "<function/2>".
func Encode(ctx context.Context, w io.Writer, tree any, f Format, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	v := describe(tree)

	var (
		b   []byte
		err error
	)

	switch f {
	case FormatYAML:
		b, err = yaml.MarshalContext(ctx, v, yaml.Indent(indent))

	case FormatJSON:
		b, err = json.MarshalIndent(ref.JSONValue(v), "", strings.Repeat(" ", indent))
		if err == nil {
			b = append(b, '\n')
		}

	case FormatDump:
		var buf bytes.Buffer

		cfg := spew.ConfigState{
			Indent:                  strings.Repeat(" ", indent),
			SortKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		cfg.Fdump(&buf, v)
		b = buf.Bytes()

	default:
		return ErrUnknownFormat.With(slog.String("format", f.String()))
	}

	if err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", f.String()))
	}

	if _, err := w.Write(b); err != nil {
		return ErrEncode.Wrap(err)
	}

	return nil
}

// describe replaces invocables in v with their descriptions.
func describe(v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, len(x))
		for i, item := range x {
			out[i] = yaml.MapItem{Key: item.Key, Value: describe(item.Value)}
		}

		return out

	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = describe(x[i])
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = describe(e)
		}

		return out

	default:
		if inv, ok := ref.Classify(v); ok {
			return ref.Describe(inv)
		}

		return v
	}
}
