// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability sets up structured logging and the prometheus
// metrics shared by the pipeline stages.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// NewLogger creates a zerolog logger from cfg. Unknown outputs fall back to
// stderr so that stdout stays free for command output.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		out = os.Stdout
	default:
		out = os.Stderr
	}
	return newLogger(out, cfg)
}

func newLogger(out io.Writer, cfg types.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithPartition adds the partition key to a logger.
func WithPartition(logger zerolog.Logger, key string) zerolog.Logger {
	return logger.With().Str("partition", key).Logger()
}

// WithSource adds the upstream source name to a logger.
func WithSource(logger zerolog.Logger, source string) zerolog.Logger {
	return logger.With().Str("source", source).Logger()
}
