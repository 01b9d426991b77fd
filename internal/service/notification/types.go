package notification

import "context"

// Sink delivers one batch of alerts, keyed by recipient email. Delivery failures are the
// sink's concern; the error is only logged by callers.
type Sink interface {
	NotifyUsersByEmail(ctx context.Context, messages map[string]string) error
}
