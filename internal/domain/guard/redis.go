package guard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/questx-lab/quest-escrow/pkg/xredis"
)

const (
	lockKey = "quest_escrow:ledger_lock"

	minPollInterval = 5 * time.Millisecond
	maxPollInterval = 100 * time.Millisecond
)

// redisGuard shares the single-operation lock between every instance
// connected to the same redis.
type redisGuard struct {
	redisClient xredis.Client
	timeout     time.Duration
	ttl         time.Duration
}

func NewRedisGuard(redisClient xredis.Client, timeout, ttl time.Duration) *redisGuard {
	return &redisGuard{
		redisClient: redisClient,
		timeout:     timeout,
		ttl:         ttl,
	}
}

func (g *redisGuard) Enter(ctx context.Context) (context.Context, func(), error) {
	if Entered(ctx) {
		return nil, nil, ErrReentrant
	}

	token := uuid.NewString()
	deadline := time.Now().Add(g.timeout)
	interval := minPollInterval

	for {
		ok, err := g.redisClient.SetNX(ctx, lockKey, token, g.ttl)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot acquire ledger lock: %v", err)
			return nil, nil, ErrBusy
		}

		if ok {
			break
		}

		if time.Now().Add(interval).After(deadline) {
			return nil, nil, ErrBusy
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, nil, ErrBusy
		}

		interval *= 2
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true

		// The lock may already have expired and been taken by another
		// instance, only delete it while it still holds our token.
		if _, err := g.redisClient.DelIfEqual(context.Background(), lockKey, token); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot release ledger lock: %v", err)
		}
	}

	return markEntered(ctx), release, nil
}
