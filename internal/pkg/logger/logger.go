// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger writing JSON lines, or human readable console output when
// format is "console". Unknown levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Init builds the logger and installs it as the global zerolog logger.
func Init(level, format string) zerolog.Logger {
	l := New(level, format, os.Stdout)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}
