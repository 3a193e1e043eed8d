package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the application logger: text output in dev, JSON in prod.
// Every record carries the service name.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	var h slog.Handler

	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	switch env {
	case "prod":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: level == "debug"})
	}

	return slog.New(h).With(slog.String("service", "nahl"))
}

// ParseLevel maps a configured level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
