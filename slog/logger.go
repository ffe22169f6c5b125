// Package slog provides logging decorators for pricewatch services and the
// construction of the process logger.
package slog

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/pricewatch"
)

// Log formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds a logger writing to w. Level is one of debug, info, warn
// or error; format is text or json. Empty values mean info and text.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, pricewatch.Errorf(pricewatch.EINVALID, "invalid log level %q", level)
		}
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, pricewatch.Errorf(pricewatch.EINVALID, "invalid log format %q", format)
}
