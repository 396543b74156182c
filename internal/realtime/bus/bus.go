package bus

import (
	"context"
	"sync"

	"github.com/yungbote/neurobridge-content/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// MemoryBus delivers in process. It is used when no Redis address is
// configured and in tests.
type MemoryBus struct {
	mu        sync.Mutex
	published []realtime.SSEMessage
	handlers  []func(realtime.SSEMessage)
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.Lock()
	b.published = append(b.published, msg)
	handlers := append([]func(realtime.SSEMessage){}, b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, onMsg)
	return nil
}

// Published returns a copy of everything sent so far.
func (b *MemoryBus) Published() []realtime.SSEMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.SSEMessage(nil), b.published...)
}

func (b *MemoryBus) Close() error { return nil }
