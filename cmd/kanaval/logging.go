package main

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the command logger. closer is nil unless logs go to a file.
func newLogger(stderr io.Writer, level, format, file string) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	out := stderr
	var closer io.Closer
	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out, closer = rotated, rotated
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(out, opts)), closer, nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), closer, nil
	default:
		return nil, nil, errors.Errorf("invalid log format %q, must be text or json", format)
	}
}
