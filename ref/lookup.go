package ref

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
)

// PathSeparator separates field names in a descriptor path.
const PathSeparator = "."

// Lookuper is implemented by data map values that resolve their own fields.
type Lookuper interface {
	Lookup(key string) (any, bool)
}

// Keyer is optionally implemented by a [Lookuper] to report its field names
// for suggestions and completion.
type Keyer interface {
	Keys() []string
}

// Lookup resolves the dot-separated path against data.
//
// The second result reports whether the path names a defined value. A stored
// nil is defined; a missing field, or an intermediate node that cannot be
// traversed, is not.
func Lookup(data any, path string) (any, bool) {
	v, res := lookup(data, path)

	return v, res.ok
}

// lookupResult describes where a path lookup stopped.
type lookupResult struct {
	parent  any    // last node successfully reached
	segment string // segment that could not be resolved
	depth   int    // number of segments resolved
	ok      bool
}

func lookup(data any, path string) (any, lookupResult) {
	node := data

	segments := strings.Split(path, PathSeparator)
	for i, seg := range segments {
		next, ok := Field(node, seg)
		if !ok {
			return nil, lookupResult{parent: node, segment: seg, depth: i}
		}

		node = next
	}

	return node, lookupResult{depth: len(segments), ok: true}
}

// Field returns the member named key of node.
//
// Supported nodes are [Lookuper] implementations, map[string]any,
// [yaml.MapSlice], string-keyed maps of any element type, slices and arrays
// (decimal index), and structs (exported field, then exported method).
// Struct members are matched verbatim first and then with the first letter
// upper-cased, so "user.getName" finds a method GetName.
func Field(node any, key string) (any, bool) {
	switch n := node.(type) {
	case nil:
		return nil, false

	case Lookuper:
		return n.Lookup(key)

	case map[string]any:
		v, ok := n[key]

		return v, ok

	case yaml.MapSlice:
		for _, item := range n {
			if keyString(item.Key) == key {
				return item.Value, true
			}
		}

		return nil, false
	}

	return reflectField(reflect.ValueOf(node), key)
}

func reflectField(rv reflect.Value, key string) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}

	// Methods are looked up on the outermost value so that pointer receivers
	// are visible.
	outer := rv

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}

		return v.Interface(), true

	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}

		return rv.Index(i).Interface(), true

	case reflect.Struct:
		for _, name := range memberNames(key) {
			f, ok := rv.Type().FieldByName(name)
			if ok && f.IsExported() {
				return rv.FieldByIndex(f.Index).Interface(), true
			}
		}
	}

	for _, name := range memberNames(key) {
		if m := outer.MethodByName(name); m.IsValid() {
			return m.Interface(), true
		}
	}

	return nil, false
}

// memberNames returns the candidate Go identifiers for key.
func memberNames(key string) []string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return []string{key}
	}

	return []string{key, string(unicode.ToUpper(r)) + key[size:]}
}

// Keys returns the member names of node, in the node's natural order, for
// diagnostics and completion. Nodes without enumerable members yield nil.
func Keys(node any) []string {
	switch n := node.(type) {
	case nil:
		return nil

	case Keyer:
		return n.Keys()

	case map[string]any:
		return slices.Sorted(maps.Keys(n))

	case yaml.MapSlice:
		keys := make([]string, 0, len(n))
		for _, item := range n {
			keys = append(keys, keyString(item.Key))
		}

		return keys
	}

	rv := reflect.ValueOf(node)
	outer := rv

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	var keys []string

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}

		slices.Sort(keys)

		return keys

	case reflect.Struct:
		for i := range rv.NumField() {
			f := rv.Type().Field(i)
			if f.IsExported() && !f.Anonymous {
				keys = append(keys, f.Name)
			}
		}
	}

	for i := range outer.NumMethod() {
		keys = append(keys, outer.Type().Method(i).Name)
	}

	return keys
}

// suggest returns up to n members of node that fuzzy-match segment, best
// match first.
func suggest(node any, segment string, n int) []string {
	if n <= 0 || segment == "" {
		return nil
	}

	matches := fuzzy.Find(segment, Keys(node))
	if len(matches) > n {
		matches = matches[:n]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}

	return fmt.Sprint(k)
}

func joinPath(base []string, elem string) []string {
	out := make([]string, len(base), len(base)+1)
	copy(out, base)

	return append(out, elem)
}
