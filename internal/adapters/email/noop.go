package email

import (
	"context"
	"log/slog"
)

// NoopSender logs instead of delivering. Used in development and whenever
// no delivery key is configured.
type NoopSender struct{}

// NewNoopSender creates a sender that drops messages after logging them.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message and reports success.
// POST: always returns nil
func (s *NoopSender) Send(ctx context.Context, msg Message) error {
	slog.Info("email_noop", "to", msg.To, "subject", msg.Subject)
	return nil
}
