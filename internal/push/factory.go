package push

import (
	"fmt"

	"spendwatch/internal/config"
)

// NewSender builds the push backend named by the configuration.
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.PushBackend {
	case "webpush":
		return NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	case "noop":
		return NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown push backend: %s", cfg.PushBackend)
	}
}
