package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a structured JSON logger using slog. Development environments
// log at debug so orchestration state transitions are visible.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

func NewWithWriter(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(environment) {
	case "development", "dev", "local", "test":
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
