package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/refill/log"
)

func plain(opts ...log.Option) log.Logger {
	return log.Make(os.Stdout, append([]log.Option{
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	}, opts...)...)
}

func Example_basic() {
	logger := plain()
	logger.Info("application started", slog.String("version", "1.0.0"))
	// Output: level=INFO msg="application started" version=1.0.0
}

func Example_levels() {
	logger := plain(log.WithLevel(log.LevelWarn))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warning message", slog.String("key", "value"))
	// Output: level=WARN msg="warning message" key=value
}

func Example_trace() {
	logger := plain(log.WithLevel(log.LevelTrace))
	logger.Trace("resolve", slog.String("path", "users.alice"))
	// Output: level=TRACE msg=resolve path=users.alice
}

func Example_jsonFormat() {
	logger := plain(log.WithFormat(log.FormatJSON))
	logger.Info("filled", slog.Int("references", 3))
	// Output: {"level":"INFO","msg":"filled","references":3}
}

func Example_withAttributes() {
	logger := plain().With(slog.String("request_id", "12345"))
	logger.Info("processing request")
	// Output: level=INFO msg="processing request" request_id=12345
}
