package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the process-wide slog default from the CBK_LOGGING_*
// settings. "json" selects the JSON handler for production; any other format
// falls back to the text handler for local work. Level accepts debug, info,
// warn, and error (case-insensitive) and defaults to info. Source locations
// are attached only at debug level.
//
// Installing the default means handlers just call slog.Info and friends
// without threading a logger through every constructor.
func SetupLogger(format, level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}
