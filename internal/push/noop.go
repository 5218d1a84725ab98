package push

import (
	"context"
	"log/slog"

	"spendwatch/internal/core"
)

// NoopSender logs deliveries instead of sending them. Used in local
// development where no VAPID keys are configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(ctx context.Context, sub core.Subscription, payload []byte) error {
	slog.InfoContext(ctx, "Push delivery skipped (noop backend)",
		"user_id", sub.UserID,
		"endpoint", sub.Endpoint,
		"payload_bytes", len(payload))
	return nil
}
