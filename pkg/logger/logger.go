// Package logger builds the zerolog root logger for fundwatch. Components
// derive their own loggers from it via .With().Str("component", ...), so
// the level and output format are decided exactly once, here.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Pretty bool   // Human-readable console output for development
}

// New builds the root logger. Unknown or empty level strings fall back to
// info rather than failing startup. The level is carried on the logger
// itself, not set process-globally.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}
