package push

import (
	"context"
	"errors"

	"spendwatch/internal/core"
)

// ErrEndpointGone signals the push service rejected the endpoint as
// permanently dead. The caller should deactivate the subscription.
var ErrEndpointGone = errors.New("push endpoint gone")

// Sender delivers one payload to one subscription endpoint.
type Sender interface {
	Send(ctx context.Context, sub core.Subscription, payload []byte) error
}
