package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefault_LogFunctions(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(Make(&buf,
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
		WithCaller(true),
	))
	defer SetDefault(prev)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			m := decodeLine(t, buf.Bytes())

			if m["level"] != tt.level {
				t.Errorf("expected level %s, got %v", tt.level, m["level"])
			}

			if m["key"] != "value" {
				t.Errorf("expected attribute, got: %s", buf.String())
			}
		})
	}

	buf.Reset()
	InfoContext(t.Context(), "call site")

	src, _ := decodeLine(t, buf.Bytes())["source"].(map[string]any)
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "default_test.go") {
		t.Errorf("expected call site in default_test.go, got %v", src)
	}
}

func TestDefault_Config(t *testing.T) {
	var buf bytes.Buffer

	prev := SetDefault(Make(&buf, WithFormat(FormatJSON), WithPretty(false)))
	defer SetDefault(prev)

	Config(WithLevel(LevelError))

	Warn("dropped")

	if buf.Len() > 0 {
		t.Errorf("expected warn to be filtered, got: %s", buf.String())
	}

	With(slog.String("component", "cli")).Error("kept")

	m := decodeLine(t, buf.Bytes())

	if m["component"] != "cli" || m["msg"] != "kept" {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
