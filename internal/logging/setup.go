package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions control optional rotating-file output.
type FileOptions struct {
	Dir        string // empty disables file output
	FileName   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewHandler builds the slog handler used by skillkeeper binaries: a tinted
// console handler on stdout, duplicated into a rotating log file when
// opts.Dir is set.
func NewHandler(level slog.Level, opts FileOptions) (slog.Handler, error) {
	var w io.Writer = os.Stdout
	noColor := false

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, opts.FileName),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		w = io.MultiWriter(os.Stdout, file)
		noColor = true
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}), nil
}

// NewDefault returns a Logger writing tinted output to stdout at Info level.
func NewDefault() Logger {
	return NewSlogLogger(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
	})))
}
