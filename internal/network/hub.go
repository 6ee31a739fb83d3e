package network

import (
	"sync"

	"narrative-server/pkg/api"
)

// Broadcaster fans simulation snapshots out to spectators. Each spectator
// owns a buffered channel; a full channel drops the frame rather than
// blocking the engine.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
	}
}

// Register creates a personal channel for a spectator. A previous channel
// under the same id is closed first.
func (b *Broadcaster) Register(spectatorID string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[spectatorID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 100)
	b.subscribers[spectatorID] = ch
	return ch
}

// Unregister removes a spectator and closes its channel.
func (b *Broadcaster) Unregister(spectatorID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[spectatorID]; ok {
		close(ch)
		delete(b.subscribers, spectatorID)
	}
}

// SendTo pushes a message to one spectator.
func (b *Broadcaster) SendTo(spectatorID string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[spectatorID]; ok {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Broadcast pushes a message to every spectator.
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscriberCount returns the number of connected spectators.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
