package notify

import (
	"context"

	"github.com/abdulachik/pushsignal/internal/onesignal"
)

// Notification represents a notification message.
type Notification struct {
	// Messages keyed by language code.
	Messages onesignal.Content
	// Options override the default delivery options. May be nil.
	Options onesignal.Options
}

// Result describes one dispatched (or dry-run) notification.
type Result struct {
	DeliveryID string // empty when nothing was recorded
	Payload    []byte
	StatusCode int
	Body       []byte
	DryRun     bool
}

// Notifier is the interface for sending notifications.
type Notifier interface {
	// Send sends a notification.
	Send(ctx context.Context, notification Notification) (*Result, error)
}
