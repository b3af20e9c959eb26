package logger

import "log/slog"

// NewNope returns a logger that drops every record. Packages use it when
// no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
