package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_ReturnsCorrectConfig(t *testing.T) {
	config := `
config:
  log_level: debug
  log_format: text
  indent: 4
  ratio: 0.5
  ignore: [a.b, c]
other:
  foo: bar
`

	resolver, err := resolve(context.Background(), "config")(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	tests := []struct {
		name string
		want any
	}{
		{name: "log_level", want: "debug"},
		{name: "log-format", want: "text"},
		{name: "indent", want: "4"},
		{name: "ratio", want: "0.5"},
		{name: "ignore", want: []any{"a.b", "c"}},
		{name: "foo", want: nil},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, resolver, tt.name); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("flag %q = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestResolve_NestedKeys(t *testing.T) {
	config := `
config:
  log:
    time_layout: Kitchen
    pretty: false
`

	resolver, err := resolve(context.Background(), "config")(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if got := resolveFlag(t, resolver, "log-time-layout"); got != "Kitchen" {
		t.Errorf("expected log-time-layout=Kitchen, got %v", got)
	}

	if got := resolveFlag(t, resolver, "log-pretty"); got != false {
		t.Errorf("expected log-pretty=false, got %v", got)
	}
}

func TestResolve_FillsReferences(t *testing.T) {
	t.Setenv("REFILL_TEST_LEVEL", "warn")

	config := `
defaults:
  format: json
  width: 8
config:
  log-level: '{env;["REFILL_TEST_LEVEL"]}'
  log-format: '{defaults.format}'
  indent: '{defaults.width}'
`

	resolver, err := resolve(context.Background(), "config")(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for name, want := range map[string]any{
		"log-level":  "warn",
		"log-format": "json",
		"indent":     "8",
	} {
		if got := resolveFlag(t, resolver, name); got != want {
			t.Errorf("flag %q = %#v, want %#v", name, got, want)
		}
	}
}

func TestResolve_Ignored(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{name: "missing_section", config: "existing: {foo: bar}"},
		{name: "invalid_yaml", config: "config: [a, b"},
		{name: "unresolved", config: "config: {foo: '{nope}'}"},
		{name: "not_mapping", config: "- foo"},
		{name: "empty", config: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := resolve(context.Background(), "config")(strings.NewReader(tt.config))
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}

			if val := resolveFlag(t, resolver, "foo"); val != nil {
				t.Errorf("expected nil value, got %v", val)
			}
		})
	}
}

func TestResolve_WithKong(t *testing.T) {
	var cli struct {
		Log   logConfig `embed:"" prefix:"log-"`
		Count int       `default:"1"`
	}

	path := filepath.Join(t.TempDir(), baseConfig)

	if err := os.WriteFile(path, []byte("config:\n  count: 3\n  log:\n    caller: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli,
		kong.Configuration(resolve(context.Background(), baseConfig), path),
		cli.Log.vars(),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatal(err)
	}

	if cli.Count != 3 {
		t.Errorf("expected count=3, got %d", cli.Count)
	}

	if !cli.Log.Caller {
		t.Error("expected log-caller=true from config")
	}
}
