// Package logger
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"horizonx-machine/internal/config"

	"github.com/rs/zerolog"
)

// Logger takes a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type zerologLogger struct {
	z zerolog.Logger
}

func New(cfg *config.Config) Logger {
	return NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
}

func NewWithWriter(w io.Writer, level, format string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	z := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return &zerologLogger{z: z}
}

func NewNop() Logger {
	return &zerologLogger{z: zerolog.Nop()}
}

func (l *zerologLogger) Debug(msg string, args ...any) {
	l.z.Debug().Fields(args).Msg(msg)
}

func (l *zerologLogger) Info(msg string, args ...any) {
	l.z.Info().Fields(args).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, args ...any) {
	l.z.Warn().Fields(args).Msg(msg)
}

func (l *zerologLogger) Error(msg string, args ...any) {
	l.z.Error().Fields(args).Msg(msg)
}
