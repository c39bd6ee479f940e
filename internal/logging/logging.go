// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options selects the handler and level. Level and Format come from the
// config file; Verbose and Quiet are the command-line overrides.
type Options struct {
	Level   string // debug | info | warn | error
	Format  string // text | json
	Verbose bool
	Quiet   bool
}

// level resolves the effective level:
//
//   - quiet mode:   only WARN and ERROR messages
//   - verbose mode: DEBUG and above
//   - otherwise:    the configured level, INFO when empty
//
// Quiet wins when both flags are set.
func (o Options) level() (slog.Level, error) {
	switch {
	case o.Quiet:
		return slog.LevelWarn, nil
	case o.Verbose:
		return slog.LevelDebug, nil
	case o.Level == "":
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(o.Level)); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", o.Level)
	}
	return l, nil
}

// New builds a logger writing to w.
func New(w io.Writer, o Options) (*slog.Logger, error) {
	level, err := o.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(o.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", o.Format)
	}
	return slog.New(h), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, o Options) error {
	logger, err := New(w, o)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
