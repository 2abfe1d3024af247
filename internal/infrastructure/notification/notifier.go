package notification

import "context"

// Message is a plain-text mail to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to site contacts. Delivery is best effort:
// implementations log failures and never propagate them to the caller.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// NoopNotifier drops every message. Used when notifications are disabled.
type NoopNotifier struct{}

// Notify discards the message
func (NoopNotifier) Notify(_ context.Context, _ Message) {}

var _ Notifier = NoopNotifier{}
