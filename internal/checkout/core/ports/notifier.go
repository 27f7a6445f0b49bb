package ports

import "context"

// Notifier sends transactional notifications. Calls are fire-and-forget from
// the workflow's point of view: failures are logged by the caller and never
// block or fail a placement.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}
