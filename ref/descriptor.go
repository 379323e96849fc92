package ref

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Call is the tri-state invocation request carried by a [Descriptor].
type Call int8

const (
	// CallUnset defers the decision to the resolved target: invocable targets
	// are invoked, plain values are returned as-is.
	CallUnset Call = iota
	// CallTrue requests invocation of the target.
	CallTrue
	// CallFalse requests the invocable target itself, uninvoked.
	CallFalse
)

// String returns the literal used by the compact form, or "" when unset.
func (c Call) String() string {
	switch c {
	case CallTrue:
		return "true"
	case CallFalse:
		return "false"
	default:
		return ""
	}
}

// IsSet reports whether the call field was given explicitly.
func (c Call) IsSet() bool { return c == CallTrue || c == CallFalse }

// Or returns the boolean value of c, or def if c is unset.
func (c Call) Or(def bool) bool {
	switch c {
	case CallTrue:
		return true
	case CallFalse:
		return false
	default:
		return def
	}
}

func callOf(b bool) Call {
	if b {
		return CallTrue
	}

	return CallFalse
}

// Form identifies the surface syntax a [Descriptor] was parsed from.
type Form int8

const (
	FormNone       Form = iota // not a descriptor
	FormStructured             // mapping with path, parameters, call
	FormCompact                // {path;[params];call}
)

// String returns a string representation of the form.
func (f Form) String() string {
	switch f {
	case FormStructured:
		return "structured"
	case FormCompact:
		return "compact"
	default:
		return "none"
	}
}

// Descriptor is the canonical shape of a reference.
type Descriptor struct {
	// Path is a dot-separated sequence of field names in the data map.
	Path string
	// Parameters are passed to the target when it is invoked.
	Parameters []any
	// Call controls whether an invocable target is invoked.
	Call Call
	// Form is the syntax the descriptor was recognized from.
	Form Form
}

// IsZero reports whether d is the empty, non-matching descriptor.
func (d Descriptor) IsZero() bool { return d.Form == FormNone || d.Path == "" }

// HostsNested reports whether the parameters of d may contain nested
// descriptors. Only the structured form does.
func (d Descriptor) HostsNested() bool { return d.Form == FormStructured }

// Compact renders d in compact form. The zero descriptor renders as "".
// It fails if a parameter cannot be encoded as JSON.
func (d Descriptor) Compact() (string, error) {
	if d.IsZero() {
		return "", nil
	}

	var params string

	if len(d.Parameters) > 0 {
		b, err := json.Marshal(JSONValue(d.Parameters))
		if err != nil {
			return "", err
		}

		params = string(b)
	}

	return d.render(params), nil
}

// String renders d in compact form, like [Descriptor.Compact]. Parameters
// that cannot be encoded as JSON are printed with their Go formatting, so
// the result may not parse back.
func (d Descriptor) String() string {
	s, err := d.Compact()
	if err != nil {
		return d.render(fmt.Sprint(d.Parameters))
	}

	return s
}

func (d Descriptor) render(params string) string {
	var b strings.Builder

	b.WriteByte('{')
	b.WriteString(d.Path)

	if params != "" || d.Call.IsSet() {
		b.WriteByte(';')
		b.WriteString(params)
	}

	if d.Call.IsSet() {
		b.WriteByte(';')
		b.WriteString(d.Call.String())
	}

	b.WriteByte('}')

	return b.String()
}

// Structured returns d as a structured-form mapping with keys in canonical
// order. Absent fields are omitted.
func (d Descriptor) Structured() yaml.MapSlice {
	if d.IsZero() {
		return nil
	}

	m := yaml.MapSlice{{Key: keyPath, Value: d.Path}}

	if d.Parameters != nil {
		m = append(m, yaml.MapItem{Key: keyParameters, Value: d.Parameters})
	}

	if d.Call.IsSet() {
		m = append(m, yaml.MapItem{Key: keyCall, Value: d.Call.Or(false)})
	}

	return m
}

const (
	keyPath       = "path"
	keyParameters = "parameters"
	keyCall       = "call"
)

// compactPattern matches "{" path [";" [json-array]] [";" [true|false]] "}".
var compactPattern = regexp.MustCompile(
	`^\{([^;\n]+)(?:;(\[.*\])?)?(?:;(true|false)?)?\}$`,
)

// Parse normalizes candidate into a [Descriptor].
//
// Recognized inputs are structured mappings (map[string]any or
// [yaml.MapSlice]) and compact strings. Anything else, including malformed
// compact strings, yields the zero Descriptor. Parse never fails.
func Parse(candidate any) Descriptor {
	switch c := candidate.(type) {
	case string:
		return parseCompact(c)

	case map[string]any:
		return parseStructured(func(key string) (any, bool) {
			v, ok := c[key]

			return v, ok
		})

	case yaml.MapSlice:
		return parseStructured(func(key string) (any, bool) {
			for _, item := range c {
				if k, ok := item.Key.(string); ok && k == key {
					return item.Value, true
				}
			}

			return nil, false
		})

	default:
		return Descriptor{}
	}
}

func parseStructured(get func(string) (any, bool)) Descriptor {
	raw, ok := get(keyPath)
	if !ok {
		return Descriptor{}
	}

	path, ok := raw.(string)
	if !ok || path == "" {
		return Descriptor{}
	}

	d := Descriptor{Path: path, Form: FormStructured}

	if raw, ok := get(keyCall); ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			return Descriptor{}
		}

		d.Call = callOf(b)
	}

	if raw, ok := get(keyParameters); ok && raw != nil {
		params, ok := sequence(raw)
		if !ok {
			return Descriptor{}
		}

		d.Parameters = params
	}

	return d
}

func parseCompact(s string) Descriptor {
	match := compactPattern.FindStringSubmatch(s)
	if match == nil {
		return Descriptor{}
	}

	d := Descriptor{Path: match[1], Form: FormCompact}

	if match[2] != "" {
		params, err := decodeParameters(match[2])
		if err != nil {
			return Descriptor{}
		}

		d.Parameters = params
	}

	switch match[3] {
	case "true":
		d.Call = CallTrue
	case "false":
		d.Call = CallFalse
	}

	return d
}

var errTrailingData = errors.New("trailing data after parameter array")

// decodeParameters decodes a JSON array literal. Whole numbers decode as
// int64 and all other numbers as float64.
func decodeParameters(src string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	var params []any

	err := dec.Decode(&params)
	if err != nil {
		return nil, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	for i, p := range params {
		params[i] = normalizeNumbers(p)
	}

	return params, nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x.String()

	case []any:
		for i := range x {
			x[i] = normalizeNumbers(x[i])
		}

		return x

	case map[string]any:
		for k := range x {
			x[k] = normalizeNumbers(x[k])
		}

		return x

	default:
		return v
	}
}

// sequence returns v as []any if it is a slice or array.
func sequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	// []byte is a scalar in every decoder this package works with.
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
