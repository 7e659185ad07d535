package notify

import "context"

// Payload is the notification content handed to a delivery backend.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier is the push-delivery capability. It is injected where needed;
// there is no process-wide notification state. Delivery is best-effort:
// a false return degrades token health but never fails the triggering
// operation.
type Notifier interface {
	Send(ctx context.Context, token, platform string, payload Payload) bool
}
