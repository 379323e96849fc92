package data

import (
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCache(t *testing.T) {
	ClearCache()

	src := "a: {b: [1, 2]}\n"

	first, err := Decode(t.Context(), strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	// Mutating a result must not leak into later decodes.
	first.(yaml.MapSlice)[0].Value.(yaml.MapSlice)[0].Value.([]any)[0] = "changed"

	second, err := Decode(t.Context(), strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	want := yaml.MapSlice{{Key: "a", Value: yaml.MapSlice{
		{Key: "b", Value: []any{int64(1), int64(2)}},
	}}}
	assert.Equal(t, want, second)

	n := 0
	decodeCache.Range(func(any, any) bool { n++; return true })
	assert.Equal(t, 1, n)

	ClearCache()

	decodeCache.Range(func(any, any) bool { t.Error("cache not cleared"); return false })
}

func TestDecodeCache_Keys(t *testing.T) {
	src := []byte(`home = env.HOME`)

	a := cacheKey(src, FormatHCL, options{processEnv: []string{"HOME=/a"}})
	b := cacheKey(src, FormatHCL, options{processEnv: []string{"HOME=/b"}})
	assert.NotEqual(t, a, b, "process environment affects HCL decoding")

	a = cacheKey(src, FormatYAML, options{processEnv: []string{"HOME=/a"}})
	b = cacheKey(src, FormatYAML, options{processEnv: []string{"HOME=/b"}})
	assert.Equal(t, a, b, "process environment does not affect YAML decoding")

	assert.NotEqual(t,
		cacheKey(src, FormatYAML, options{}),
		cacheKey(src, FormatJSON, options{}),
	)
}

func TestDecodeCache_Errors(t *testing.T) {
	ClearCache()

	_, err := Decode(t.Context(), strings.NewReader("a: [1"), FormatYAML)
	require.ErrorIs(t, err, ErrDecode)

	decodeCache.Range(func(any, any) bool { t.Error("failed decode was cached"); return false })
}
