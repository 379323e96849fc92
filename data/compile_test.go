package data

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/refill/ref"
)

func compileYAML(t *testing.T, src string, opts ...Option) yaml.MapSlice {
	t.Helper()

	tree, err := Decode(t.Context(), strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	out, err := Compile(t.Context(), tree, append([]Option{WithBuiltins(false)}, opts...)...)
	require.NoError(t, err)

	m, ok := out.(yaml.MapSlice)
	require.True(t, ok, "expected mapping, got %T", out)

	return m
}

func entry(t *testing.T, m yaml.MapSlice, key string) any {
	t.Helper()

	for _, item := range m {
		if item.Key == key {
			return item.Value
		}
	}

	t.Fatalf("no entry %q", key)

	return nil
}

func invocable(t *testing.T, m yaml.MapSlice, key string) ref.Invocable {
	t.Helper()

	inv, ok := entry(t, m, key).(ref.Invocable)
	require.True(t, ok, "%s is not invocable", key)

	return inv
}

const library = `
base: 10
greet:
  $params: [name]
  $expr: '"hello " + name'
add:
  $params: [x]
  $expr: base + x
twice:
  $params: [x]
  $expr: add(add(x))
point:
  $params: [x, y]
  $class:
    x: x
    y: y
    norm: x*x + y*y
    label: 7
nested:
  list:
    - $expr: '"deep"'
`

func TestCompile_Function(t *testing.T) {
	m := compileYAML(t, library)

	greet := invocable(t, m, "greet")
	assert.Equal(t, ref.KindFunction, greet.Kind())
	assert.Equal(t, 1, greet.Arity())

	v, err := greet.Invoke(t.Context(), []any{"bob"})
	require.NoError(t, err)
	assert.Equal(t, "hello bob", v)

	// Definitions see the compiled tree, including each other.
	v, err = invocable(t, m, "twice").Invoke(t.Context(), []any{int64(5)})
	require.NoError(t, err)
	assert.EqualValues(t, 25, v)

	seq, ok := entry(t, entry(t, m, "nested").(yaml.MapSlice), "list").([]any)
	require.True(t, ok)

	deep, ok := seq[0].(ref.Invocable)
	require.True(t, ok)
	assert.Equal(t, 0, deep.Arity())
}

func TestCompile_Class(t *testing.T) {
	m := compileYAML(t, library)

	point := invocable(t, m, "point")
	assert.Equal(t, ref.KindConstructor, point.Kind())
	assert.Equal(t, 2, point.Arity())

	v, err := point.Invoke(t.Context(), []any{int64(3), int64(4)})
	require.NoError(t, err)

	inst, ok := v.(yaml.MapSlice)
	require.True(t, ok)
	require.Len(t, inst, 4)

	keys := make([]any, len(inst))
	for i, item := range inst {
		keys[i] = item.Key
	}

	assert.Equal(t, []any{"x", "y", "norm", "label"}, keys)
	assert.EqualValues(t, 25, inst[2].Value)
	assert.EqualValues(t, 7, inst[3].Value)
}

func TestCompile_ArityMismatch(t *testing.T) {
	m := compileYAML(t, library)

	_, err := invocable(t, m, "greet").Invoke(t.Context(), nil)
	assert.ErrorIs(t, err, ref.ErrArityMismatch)
}

func TestCompile_Errors(t *testing.T) {
	tests := map[string]struct {
		src  string
		want error
	}{
		"both kinds":      {"f: {$expr: '1', $class: {a: '1'}}", ErrDefinition},
		"unknown key":     {"f: {$expr: '1', extra: 2}", ErrDefinition},
		"params not list": {"f: {$expr: '1', $params: x}", ErrDefinition},
		"duplicate param": {"f: {$expr: '1', $params: [a, a]}", ErrDefinition},
		"expr not string": {"f: {$expr: [1]}", ErrDefinition},
		"class not map":   {"f: {$class: [1]}", ErrDefinition},
		"syntax":          {"f: {$expr: '1 +'}", ErrExprCompile},
		"field syntax":    {"f: {$class: {a: '(('}}", ErrExprCompile},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tree, err := Decode(t.Context(), strings.NewReader(tt.src), FormatYAML)
			require.NoError(t, err)

			_, err = Compile(t.Context(), tree, WithBuiltins(false))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompile_EvaluateError(t *testing.T) {
	m := compileYAML(t, "f:\n  $params: [x]\n  $expr: int(x)\n")

	_, err := invocable(t, m, "f").Invoke(t.Context(), []any{"abc"})
	assert.ErrorIs(t, err, ErrExprEvaluate)
}

func TestCompile_CallDepth(t *testing.T) {
	m := compileYAML(t, "loop:\n  $expr: loop()\n")

	_, err := invocable(t, m, "loop").Invoke(t.Context(), nil)
	assert.ErrorIs(t, err, ErrExprEvaluate)
}

func TestCompile_Canceled(t *testing.T) {
	m := compileYAML(t, library)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := invocable(t, m, "greet").Invoke(ctx, []any{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompile_Builtins(t *testing.T) {
	tree := yaml.MapSlice{
		{Key: "hostname", Value: "shadowed"},
		{Key: "home", Value: yaml.MapSlice{
			{Key: "$expr", Value: `env("HOME")`},
		}},
	}

	out, err := Compile(t.Context(), tree, WithProcessEnv([]string{"HOME=/home/alice"}))
	require.NoError(t, err)

	m, ok := out.(yaml.MapSlice)
	require.True(t, ok)

	// User entries come first and shadow builtins of the same name.
	assert.Equal(t, "hostname", m[0].Key)
	assert.Equal(t, "shadowed", m[0].Value)
	assert.Equal(t, "home", m[1].Key)

	count := 0
	for _, item := range m {
		if item.Key == "hostname" {
			count++
		}
	}

	assert.Equal(t, 1, count)

	v, err := invocable(t, m, "home").Invoke(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/home/alice", v)

	for _, k := range BuiltinKeys() {
		entry(t, m, k)
	}

	_, err = Compile(t.Context(), []any{1})
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestCompile_WithFill(t *testing.T) {
	m := compileYAML(t, library)

	input := yaml.MapSlice{
		{Key: "hi", Value: `{greet;["ann"]}`},
		{Key: "origin", Value: yaml.MapSlice{
			{Key: "path", Value: "point"},
			{Key: "parameters", Value: []any{int64(0), "{base}"}},
		}},
		{Key: "fn", Value: "{add;;false}"},
	}

	out, err := ref.Fill(t.Context(), input, m)
	require.NoError(t, err)

	filled, ok := out.(yaml.MapSlice)
	require.True(t, ok)

	assert.Equal(t, "hello ann", filled[0].Value)

	origin, ok := filled[1].Value.(yaml.MapSlice)
	require.True(t, ok)
	assert.EqualValues(t, 100, origin[2].Value)

	fn, ok := filled[2].Value.(ref.Invocable)
	require.True(t, ok)
	assert.Equal(t, "<function/1>", ref.Describe(fn))
}
