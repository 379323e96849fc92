package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/refill/ref"
)

func fillBuiltin(t *testing.T, input any) any {
	t.Helper()

	out, err := ref.Fill(t.Context(), input,
		Builtins([]string{"GREETING=hi", "PATH=/usr/bin:/bin"}))
	require.NoError(t, err)

	return out
}

func TestBuiltins_Env(t *testing.T) {
	assert.Equal(t, "hi", fillBuiltin(t, `{env;["GREETING"]}`))
	assert.Equal(t, "", fillBuiltin(t, `{env;["MISSING"]}`))
}

func TestBuiltins_Host(t *testing.T) {
	platform := fillBuiltin(t, "{platform.os}")
	assert.NotEmpty(t, platform)

	target := fillBuiltin(t, "{target}")
	m, ok := target.(yaml.MapSlice)
	require.True(t, ok)
	assert.Equal(t, "os", m[0].Key)
	assert.Equal(t, "arch", m[1].Key)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, fillBuiltin(t, "{cwd}"))
}

func TestBuiltins_Files(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	link := filepath.Join(dir, "l")

	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.NoError(t, os.Symlink(file, link))

	tests := []struct {
		path string
		fn   string
		want bool
	}{
		{file, "exists", true},
		{filepath.Join(dir, "none"), "exists", false},
		{dir, "isDir", true},
		{file, "isDir", false},
		{file, "isRegular", true},
		{link, "isSymlink", true},
		{file, "isSymlink", false},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			input := yaml.MapSlice{
				{Key: "path", Value: "file." + tt.fn},
				{Key: "parameters", Value: []any{tt.path}},
			}

			assert.Equal(t, tt.want, fillBuiltin(t, input))
		})
	}
}

func TestBuiltins_Path(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "c"),
		fillBuiltin(t, `{path.cat;[["a","b","c"]]}`))
	assert.Equal(t, filepath.Join("..", "b"),
		fillBuiltin(t, `{path.rel;["/x/a","/x/b"]}`))
	assert.True(t, filepath.IsAbs(fillBuiltin(t, `{path.abs;["rel"]}`).(string)))
}

func TestBuiltins_Mung(t *testing.T) {
	got, ok := fillBuiltin(t, `{mung.prefix;["/usr/bin:/bin",["/opt/bin"]]}`).(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "/opt/bin"), got)
	assert.Contains(t, got, "/bin")
}

func TestBuiltinKeys(t *testing.T) {
	keys := BuiltinKeys()

	for _, k := range []string{"env", "cwd", "hostname", "platform", "path", "file", "mung"} {
		assert.Contains(t, keys, k)
	}
}
