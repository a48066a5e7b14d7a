package core

import (
	"context"
	"log/slog"
	"time"
)

// Alert is a short user-facing notification about a failed import.
type Alert struct {
	Message    string        `json:"message"`
	Severity   string        `json:"severity"`
	Duration   time.Duration `json:"duration"`
	Horizontal string        `json:"horizontal"` // start, center, end
	Vertical   string        `json:"vertical"`   // top, bottom
}

// AlertDefaults fills in everything but the message.
type AlertDefaults struct {
	Severity   string
	Duration   time.Duration
	Horizontal string
	Vertical   string
}

// DefaultAlert matches the error toast shown by the import dialog.
var DefaultAlert = AlertDefaults{
	Severity:   "Error",
	Duration:   3 * time.Second,
	Horizontal: "start",
	Vertical:   "bottom",
}

func (d AlertDefaults) alert(msg string) Alert {
	return Alert{
		Message:    msg,
		Severity:   d.Severity,
		Duration:   d.Duration,
		Horizontal: d.Horizontal,
		Vertical:   d.Vertical,
	}
}

// Notifier shows alerts to the user.
type Notifier interface {
	Notify(ctx context.Context, a Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, a Alert)

func (f NotifierFunc) Notify(ctx context.Context, a Alert) { f(ctx, a) }

// SlogNotifier writes alerts to a logger. Used where no UI is attached.
type SlogNotifier struct {
	Logger *slog.Logger
}

func (n SlogNotifier) Notify(ctx context.Context, a Alert) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "import alert",
		"message", a.Message,
		"severity", a.Severity,
		"duration", a.Duration,
	)
}
