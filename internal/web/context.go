package web

import (
	"context"
	"sync"

	"github.com/JonMunkholm/QuizImport/internal/core"
)

type alertsKey struct{}

// alertBox holds the alerts raised while serving one request.
type alertBox struct {
	mu     sync.Mutex
	alerts []core.Alert
}

func (b *alertBox) add(a core.Alert) {
	b.mu.Lock()
	b.alerts = append(b.alerts, a)
	b.mu.Unlock()
}

// last returns the most recent alert, or nil.
func (b *alertBox) last() *core.Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.alerts) == 0 {
		return nil
	}
	a := b.alerts[len(b.alerts)-1]
	return &a
}

// withAlerts returns a context that collects alerts for the response.
func withAlerts(ctx context.Context) (context.Context, *alertBox) {
	box := &alertBox{}
	return context.WithValue(ctx, alertsKey{}, box), box
}

// ResponseNotifier delivers import alerts with the HTTP response of the
// request that raised them. Alerts raised outside a request go to Fallback.
type ResponseNotifier struct {
	Fallback core.Notifier
}

func (n ResponseNotifier) Notify(ctx context.Context, a core.Alert) {
	if box, ok := ctx.Value(alertsKey{}).(*alertBox); ok {
		box.add(a)
		return
	}
	if n.Fallback != nil {
		n.Fallback.Notify(ctx, a)
	}
}
