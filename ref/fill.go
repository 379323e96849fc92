package ref

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Fill returns a copy of input with every reference descriptor replaced by
// the value it resolves to in data.
//
// The walk is depth-first and strictly ordered: sequence elements by index,
// [yaml.MapSlice] entries in insertion order, and map[string]any entries in
// sorted key order. Values at paths given by [WithIgnoredPaths] are copied
// verbatim. Strings that are not compact descriptors, and all other scalars,
// are returned unchanged.
//
// Any resolution error aborts the whole operation; no partial result is
// returned.
func Fill(ctx context.Context, input, data any, opts ...Option) (any, error) {
	r := newResolver(data, opts...)

	r.opts.logger.TraceContext(ctx, "fill start",
		slog.String("input_type", typeName(input)),
		slog.Int("ignored_paths", len(r.opts.ignored)),
	)

	out, err := r.fill(ctx, input, nil)
	if err != nil {
		r.opts.logger.TraceContext(ctx, "fill failed", slog.Any("error", err))

		return nil, err
	}

	r.opts.logger.TraceContext(ctx, "fill complete")

	return out, nil
}

func (r *resolver) fill(ctx context.Context, node any, at []string) (any, error) {
	node = container(node)

	switch node.(type) {
	case string, []any, map[string]any, yaml.MapSlice:
	default:
		return node, nil
	}

	ref, ok, err := r.tryResolve(ctx, Parse(node), at)
	if err != nil {
		return nil, err
	}

	if ok {
		return ref.Get(ctx)
	}

	switch n := node.(type) {
	case []any:
		out := make([]any, len(n))

		for i, elem := range n {
			v, err := r.child(ctx, elem, joinPath(at, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}

			out[i] = v
		}

		return out, nil

	case map[string]any:
		out := make(map[string]any, len(n))

		for _, key := range slices.Sorted(maps.Keys(n)) {
			v, err := r.child(ctx, n[key], joinPath(at, key))
			if err != nil {
				return nil, err
			}

			out[key] = v
		}

		return out, nil

	case yaml.MapSlice:
		out := make(yaml.MapSlice, len(n))

		for i, item := range n {
			v, err := r.child(ctx, item.Value, joinPath(at, keyString(item.Key)))
			if err != nil {
				return nil, err
			}

			out[i] = yaml.MapItem{Key: item.Key, Value: v}
		}

		return out, nil
	}

	return node, nil
}

// child fills the value at path at unless the path is ignored.
func (r *resolver) child(ctx context.Context, node any, at []string) (any, error) {
	if r.opts.isIgnored(at) {
		r.opts.logger.TraceContext(ctx, "fill ignored",
			slog.String("location", strings.Join(at, PathSeparator)),
		)

		return node, nil
	}

	return r.fill(ctx, node, at)
}

// container converts typed slices, arrays, and maps keyed by strings or
// interfaces into []any and map[string]any so fill can walk them. Any other
// value, including []byte, is returned unchanged.
func container(node any) any {
	switch node.(type) {
	case nil, string, []any, map[string]any, yaml.MapSlice:
		return node
	}

	if seq, ok := sequence(node); ok {
		return seq
	}

	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Map {
		return node
	}

	switch rv.Type().Key().Kind() {
	case reflect.String, reflect.Interface:
	default:
		return node
	}

	out := make(map[string]any, rv.Len())

	for it := rv.MapRange(); it.Next(); {
		out[keyString(it.Key().Interface())] = it.Value().Interface()
	}

	return out
}
