// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("fill complete", slog.Int("references", n))
//
// The zero [Logger] discards everything, so packages can accept a Logger
// option and log unconditionally.
//
// # Configuration
//
// Loggers are configured with functional options when created with [Make]
// or derived with [Logger.Wrap]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("DateTime"),
//		log.WithCaller(true),
//		log.WithPretty(false))
//
// [Level] and [Format] implement [encoding.TextUnmarshaler], so they can be
// used directly as command-line flag types.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded. Trace is rendered as "TRACE" rather than slog's "DEBUG-4".
//
// # Output Formats
//
// [FormatText] (the default) and [FormatJSON] use the slog handlers of the
// same name. With [WithPretty], both are rendered with ANSI colors; pretty
// JSON is indented across multiple lines. Values implementing
// [slog.LogValuer] and attribute groups are expanded in every format.
//
// # Default Logger
//
// Package-level functions such as [Info] and [ErrorContext] write to a
// process-wide default logger on standard error, reconfigured with [Config].
// Context-unaware functions use [DefaultContextProvider], which returns
// [context.TODO] by default.
package log
