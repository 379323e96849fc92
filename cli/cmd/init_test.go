package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/data"
)

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr error
	}{
		{
			name: "create_new_config",
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail_without_force",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				Indent int    `default:"4"`
				Output string `default:"json"`
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse(nil)
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(context.Background(), kctx)

			err = (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			tree, err := data.DecodeFile(ctx, confPath)
			if err != nil {
				t.Fatalf("generated config is not valid YAML: %v", err)
			}

			want := yaml.MapSlice{{Key: ConfigIdentifier, Value: yaml.MapSlice{
				{Key: "indent", Value: int64(4)},
				{Key: "output", Value: "json"},
			}}}

			if !reflect.DeepEqual(tree, want) {
				t.Errorf("config = %#v, want %#v", tree, want)
			}
		})
	}
}

// TestInitFlagValues tests that only set, visible flags are collected.
func TestInitFlagValues(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool     `help:"Enable verbose output"`
		Output  string   `help:"Output file"`
		Count   int      `help:"Number of items"`
		Tags    []string `help:"Tags"`
		Secret  string   `hidden:""`
		Empty   string
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{
		"--verbose", "--output=test.txt", "--count=5", "--tags=a,b", "--secret=x",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := (&Init{}).flagValues(kctx)

	want := yaml.MapSlice{
		{Key: "verbose", Value: true},
		{Key: "output", Value: "test.txt"},
		{Key: "count", Value: 5},
		{Key: "tags", Value: []any{"a", "b"}},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("flagValues() = %#v, want %#v", got, want)
	}
}

// TestConfigValue tests the conversion of individual flag values.
func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "bool_true", value: true, want: true},
		{name: "bool_false", value: false, want: false},
		{name: "string_value", value: "test", want: "test"},
		{name: "empty_string", value: "", want: nil},
		{name: "int_value", value: 42, want: 42},
		{name: "float_value", value: 3.14, want: 3.14},
		{name: "string_slice", value: []string{"a", "b"}, want: []any{"a", "b"}},
		{name: "empty_slice", value: []string{}, want: nil},
		{name: "int_slice", value: []int{1, 2}, want: []any{1, 2}},
		{name: "text_marshaler", value: data.FormatJSON, want: "json"},
		{name: "nil", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := configValue(tt.value); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("configValue(%v) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}
