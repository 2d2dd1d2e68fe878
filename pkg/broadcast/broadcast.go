// Package broadcast is the publish/subscribe primitive behind live
// notifications. Delivery is at-most-once fan-out to current subscribers with
// no persistence.
package broadcast

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("broadcast: broker closed")

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

type Broker interface {
	Publisher
	Subscriber
}

// Subscription delivers payloads in publish order until closed. Close is
// idempotent; after it returns no further messages are delivered and
// Messages is closed.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}
