package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Loggers struct {
	InfoLogger  *slog.Logger
	ErrorLogger *slog.Logger
}

func SetupLogger(level string) (*Loggers, error) {
	return NewLoggers(level, os.Stdout, os.Stderr)
}

// NewLoggers writes info-level records to infoOut and errors to errOut, both as JSON.
func NewLoggers(level string, infoOut, errOut io.Writer) (*Loggers, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	infoLogger := slog.New(slog.NewJSONHandler(infoOut, &slog.HandlerOptions{Level: lvl}))
	errorLogger := slog.New(slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError}))

	slog.SetDefault(infoLogger)

	return &Loggers{
		InfoLogger:  infoLogger,
		ErrorLogger: errorLogger,
	}, nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Discard returns loggers that drop everything. Used by tests.
func Discard() *Loggers {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Loggers{InfoLogger: l, ErrorLogger: l}
}
