// Package logging installs the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup makes a text handler at level the slog default. With a non-empty
// file, records go to a size-rotated log file instead of stderr; the returned
// closer releases it.
func Setup(level slog.Level, file string) io.Closer {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w, closer = lj, lj
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
