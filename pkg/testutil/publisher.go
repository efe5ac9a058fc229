package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/quest-escrow/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu        sync.Mutex
	published []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m.mu.Lock()
	m.published = append(m.published, pack)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}

// Published returns every pack passed to Publish, including failed ones.
func (m *MockPublisher) Published() []*pubsub.Pack {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*pubsub.Pack(nil), m.published...)
}
