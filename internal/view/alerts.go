package view

import (
	"github.com/OCAP2/pinmap/internal/queue"
)

// Alerts collects user-facing notifications until the front end shows them.
type Alerts struct {
	pending *queue.Queue[string]
}

// NewAlerts creates an empty alert surface.
func NewAlerts() *Alerts {
	return &Alerts{pending: queue.New[string]()}
}

// Alert queues msg for display.
func (a *Alerts) Alert(msg string) {
	a.pending.Push(msg)
}

// Pending returns the queued alerts without consuming them.
func (a *Alerts) Pending() []string {
	return a.pending.Snapshot()
}

// Drain returns and clears the queued alerts.
func (a *Alerts) Drain() []string {
	return a.pending.GetAndEmpty()
}
