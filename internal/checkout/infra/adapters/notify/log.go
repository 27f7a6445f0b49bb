// Package notify contains Notifier adapters. The default adapter writes the
// notification to the structured log, which is what local development and
// tests use; a real mail provider plugs in behind the same port.
package notify

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/core/ports"
)

type logNotifier struct{}

// NewLogNotifier returns a Notifier that records sends in the log instead of
// delivering them.
func NewLogNotifier() ports.Notifier {
	return logNotifier{}
}

func (logNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	slog.InfoContext(ctx, "notification sent",
		"recipient", recipient,
		"subject", subject,
		"body_bytes", len(htmlBody),
	)
	return nil
}
