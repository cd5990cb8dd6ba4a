package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger. Development gets a console writer at
// debug level, everything else JSON at info level.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, "", os.Stdout)
}

// NewWithLevel is New with an explicit level override ("" keeps the default).
func NewWithLevel(env, level string) zerolog.Logger {
	return NewWithWriter(env, level, os.Stdout)
}

func NewWithWriter(env, level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := out
	lvl := zerolog.InfoLevel
	if env != "production" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		lvl = parseLevel(level, lvl)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str("env", env).Logger()
}

func parseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return fallback
}
