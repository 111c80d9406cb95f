package dashboard

import "log/slog"

// Notifier receives the user-visible outcome of every load and edit. In the
// web UI this is a toast; the default sink is the process log.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type LogNotifier struct{}

func (LogNotifier) Success(msg string) {
	slog.Info("notification", "kind", "success", "message", msg)
}

func (LogNotifier) Error(msg string) {
	slog.Error("notification", "kind", "error", "message", msg)
}
