package events

import (
	"context"
	"sync"

	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
)

const sinkBroadcast = "broadcast"

var errSubscriberFull = errors.New("subscriber buffer full")

// Broadcaster fans events out to in-process subscribers. A subscriber that
// is not keeping up misses events instead of blocking the sender.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan WatchlistsRefreshed
}

// NewBroadcaster creates a broadcaster without subscribers
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan WatchlistsRefreshed)}
}

// Subscribe registers a subscriber with the given buffer. The returned
// function unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan WatchlistsRefreshed, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan WatchlistsRefreshed, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Notify implements Notifier
func (b *Broadcaster) Notify(_ context.Context, event WatchlistsRefreshed) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
			metrics.RecordEvent(sinkBroadcast, nil)
		default:
			metrics.RecordEvent(sinkBroadcast, errSubscriberFull)
		}
	}
}

// Subscribers returns the number of active subscribers
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
