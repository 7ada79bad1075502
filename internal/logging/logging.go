// Package logging provides structured logging setup using log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatText writes key=value lines to stderr.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line to stderr.
	FormatJSON Format = "json"
	// FormatJournal sends entries to the systemd journal, falling back to text
	// when the journal is not reachable.
	FormatJournal Format = "journal"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvLevel  = "NETRATE_LOG_LEVEL"
	EnvFormat = "NETRATE_LOG_FORMAT"
	EnvDebug  = "NETRATE_DEBUG"
)

// Options configures the logger.
type Options struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr. It is ignored by the journal handler.
	Output io.Writer
}

// New builds a logger for opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	switch opts.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, handlerOpts)
	case FormatJournal:
		if journal.Enabled() {
			handler = newJournalHandler(opts.Level)
			break
		}
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// Setup installs a logger built from opts as the slog default.
// Call this once at application startup.
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}

// SetupFromEnv initializes the default logger from environment variables.
// Unknown values fall back to info level and text output.
func SetupFromEnv() *slog.Logger {
	return Setup(OptionsFromEnv())
}

// OptionsFromEnv reads NETRATE_LOG_LEVEL, NETRATE_LOG_FORMAT and NETRATE_DEBUG.
// NETRATE_DEBUG=1 forces debug level.
func OptionsFromEnv() Options {
	opts := Options{Level: slog.LevelInfo, Format: FormatText}

	if lvl, err := ParseLevel(os.Getenv(EnvLevel)); err == nil {
		opts.Level = lvl
	}
	if f, err := ParseFormat(os.Getenv(EnvFormat)); err == nil {
		opts.Format = f
	}
	if os.Getenv(EnvDebug) == "1" {
		opts.Level = slog.LevelDebug
	}
	return opts
}

// ParseLevel maps a level name to a slog level. An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat maps a format name to a Format. An empty name is text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatJournal:
		return f, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}
