// Package logging points the standard logger at stderr and, optionally, a
// size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the rotated log file.
type Options struct {
	File       string // empty = stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup configures the standard logger. The returned closer flushes and
// closes the log file; it is a no-op when logging to stderr only.
func Setup(opts Options) io.Closer {
	log.SetFlags(log.LstdFlags)
	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	return lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
