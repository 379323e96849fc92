package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/refill/cli/cmd"
	"github.com/ardnew/refill/log"
)

func TestLogConfigScan(t *testing.T) {
	defer log.Config(log.WithLevel(log.DefaultLevel), log.WithFormat(log.DefaultFormat),
		log.WithCaller(log.DefaultCaller), log.WithPretty(log.DefaultPretty))

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate_values",
			args: []string{"fill", "--log-level", "debug", "--log-format", "json"},
			want: logConfig{Level: logLevel(log.LevelDebug), Format: logFormat(log.FormatJSON)},
		},
		{
			name: "assigned_values",
			args: []string{"--log-level=warn", "--log-caller", "--no-log-pretty"},
			want: logConfig{Level: logLevel(log.LevelWarn), Caller: true},
		},
		{
			name: "assigned_booleans",
			args: []string{"--log-pretty=true", "--no-log-caller=false"},
			want: logConfig{Pretty: true, Caller: true},
		},
		{
			name: "after_terminator",
			args: []string{"--", "--log-caller"},
			want: logConfig{},
		},
		{
			name: "unrelated",
			args: []string{"-d", "data.yaml", "--logs"},
			want: logConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestLogLevelText(t *testing.T) {
	var l logLevel
	if err := l.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown level")
	}

	if err := l.UnmarshalText([]byte("trace")); err != nil {
		t.Fatal(err)
	}

	defer log.Config(log.WithLevel(log.DefaultLevel))

	if text, _ := l.MarshalText(); string(text) != "trace" {
		t.Errorf("MarshalText() = %q, want trace", text)
	}

	var f logFormat
	if err := f.UnmarshalText([]byte("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

// runCLI runs the command line and returns the output of the selected command.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := cmd.WithStdio(context.Background(), bytes.NewReader(nil), &out)

	err := Run(ctx, func(code int) { t.Fatalf("unexpected exit(%d)", code) }, args...)

	return out.String(), err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	// User directories are resolved once per process.
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, ".cache"))

	dataPath := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(dataPath, []byte("port: 8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	inputPath := filepath.Join(dir, "input.yaml")
	if err := os.WriteFile(inputPath, []byte("listen: '{port}'\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "parse",
			args: []string{"parse", "--compact", "{a;[1]}"},
			want: "{a;[1]}\n",
		},
		{
			name: "fill",
			args: []string{"fill", "-d", dataPath, "--no-builtins", inputPath},
			want: "listen: 8080\n",
		},
		{
			name: "default_command",
			args: []string{"-d", dataPath, inputPath},
			want: "listen: 8080\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("Run(%q) error = %v", tt.args, err)
			}

			if got != tt.want {
				t.Errorf("Run(%q) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
