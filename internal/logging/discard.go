package logging

import "log/slog"

// NewDiscard returns a Logger that drops everything. Intended for tests.
func NewDiscard() Logger {
	return NewSlogLogger(slog.New(slog.DiscardHandler))
}
