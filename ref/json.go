package ref

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// JSONValue returns v with every [yaml.MapSlice] wrapped so that it encodes
// as a JSON object with keys in insertion order. Other values are copied
// where they contain mappings and returned unchanged otherwise.
func JSONValue(v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		return orderedObject(x)

	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = JSONValue(x[i])
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = JSONValue(e)
		}

		return out

	default:
		return v
	}
}

// orderedObject encodes a mapping as a JSON object in insertion order.
type orderedObject yaml.MapSlice

// MarshalJSON implements [json.Marshaler].
func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, item := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(keyString(item.Key))
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(JSONValue(item.Value))
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
