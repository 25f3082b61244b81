package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config holds logger options.
type Config struct {
	Env   string // development -> human readable console; anything else -> JSON
	Level string // trace, debug, info, warn, error
	Out   io.Writer
}

// Logger is the one instance built at startup and handed to components.
type Logger struct {
	zl zerolog.Logger
}

// New builds a structured logger. Output defaults to stderr so command
// results on stdout stay machine readable.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return &Logger{zl: zerolog.New(out).Level(levelOf(cfg.Level)).With().Timestamp().Logger()}
}

// levelOf maps a configured name to a level; blank or unknown names mean warn.
func levelOf(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}

// Debug starts a debug event.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Zerolog returns the underlying logger for components that take zerolog directly.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
