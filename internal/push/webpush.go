package push

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"spendwatch/internal/core"
)

// WebPushSender delivers payloads over the Web Push protocol with
// VAPID authentication.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

func NewWebPushSender(publicKey, privateKey, subscriber string) (*WebPushSender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("webpush sender requires VAPID public and private keys")
	}
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}, nil
}

func (s *WebPushSender) Send(ctx context.Context, sub core.Subscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("endpoint %s returned %d: %w", sub.Endpoint, resp.StatusCode, ErrEndpointGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
