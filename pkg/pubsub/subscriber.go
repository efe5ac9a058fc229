package pubsub

import (
	"context"
	"time"
)

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	// Subscribe blocks until the first consumer session is ready and keeps
	// consuming in the background until ctx is done.
	Subscribe(ctx context.Context) error
	Stop(ctx context.Context) error
}
