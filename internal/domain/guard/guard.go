package guard

import (
	"context"
	"time"

	"github.com/questx-lab/quest-escrow/pkg/errorx"
)

var (
	ErrReentrant = errorx.New(errorx.Reentrant, "Reentrant call is not allowed")
	ErrBusy      = errorx.New(errorx.Reentrant, "Ledger is busy")
)

// Guard allows a single top-level ledger operation at a time and rejects any
// operation started from inside a running one.
type Guard interface {
	// Enter marks the returned context as running an operation. The release
	// function must be called once the operation finished.
	Enter(ctx context.Context) (context.Context, func(), error)
}

type enteredKey struct{}

// Entered reports whether ctx belongs to a running operation.
func Entered(ctx context.Context) bool {
	v, _ := ctx.Value(enteredKey{}).(bool)
	return v
}

func markEntered(ctx context.Context) context.Context {
	return context.WithValue(ctx, enteredKey{}, true)
}

type localGuard struct {
	slot    chan struct{}
	timeout time.Duration
}

func NewLocalGuard(timeout time.Duration) *localGuard {
	return &localGuard{
		slot:    make(chan struct{}, 1),
		timeout: timeout,
	}
}

func (g *localGuard) Enter(ctx context.Context) (context.Context, func(), error) {
	if Entered(ctx) {
		return nil, nil, ErrReentrant
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
	case <-timer.C:
		return nil, nil, ErrBusy
	case <-ctx.Done():
		return nil, nil, ErrBusy
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		<-g.slot
	}

	return markEntered(ctx), release, nil
}
