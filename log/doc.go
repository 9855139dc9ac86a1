// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is immutable once made. Its format, level, time layout and caller
// reporting are fixed at creation time with functional options, and deriving
// a logger with [Logger.Wrap] or [Logger.With] never affects the original.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("module parsed", slog.Int("items", 12))
//	logger.Error("fetch failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Zero Value
//
// The zero value [Logger] discards everything. Libraries can therefore hold a
// Logger field and log unconditionally; nothing is written unless the caller
// supplied a real logger.
//
// # Package Logger
//
// The package-level functions ([Info], [Warn], ...) write through a default
// logger that writes JSON to stderr. [Config] replaces it by applying options
// on top of its current configuration.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded.
//
// # Time Formatting
//
// [WithTimeLayout] accepts any named layout from the [time] package, matched
// case-insensitively and ignoring punctuation ("RFC3339", "rfc-3339-nano",
// "Kitchen"), a handful of short aliases ("ms", "us", "ns"), or a custom
// layout used verbatim. An empty layout or "none" omits timestamps.
package log
