// Package logger builds the zerolog logger used across trendline.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Formats supported by New.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// New returns a logger writing to w at the given level and installs it as the
// global logger. Unknown levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if strings.EqualFold(format, JSONFormat) {
		zerolog.TimeFieldFormat = time.RFC3339
		logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		logger = zerolog.New(output).With().Timestamp().Logger()
	}
	logger = logger.Level(lvl)
	log.Logger = logger
	return logger
}
