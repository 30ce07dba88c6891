package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New builds the logger named by format: "text" writes slog records to w,
// anything else writes zap JSON to stderr.
func New(format, level string, w io.Writer) (Logger, error) {
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return NewTextLogger(w, ParseSlogLevel(level)), nil
	}
	zl, err := NewProductionZap(level)
	if err != nil {
		return nil, err
	}
	return NewZapLogger(zl), nil
}

// ParseSlogLevel mirrors ParseZapLevel for slog.
func ParseSlogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
