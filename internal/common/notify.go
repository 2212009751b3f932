package common

import "log/slog"

// LogNotifier is the default notification sink: action outcomes land in
// the structured log. A desktop or TUI sink can replace it behind the
// same two methods.
type LogNotifier struct{}

// Success records a completed action.
func (LogNotifier) Success(msg string) {
	slog.Info("Action completed", "message", msg)
}

// Error records a failed action.
func (LogNotifier) Error(msg string) {
	slog.Warn("Action failed", "message", msg)
}
