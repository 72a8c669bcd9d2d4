package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/services/quotesync"
	"quotewatch/pkg/logger"
)

type recordingNotifier struct {
	events []WatchlistsRefreshed
}

func (r *recordingNotifier) Notify(_ context.Context, e WatchlistsRefreshed) {
	r.events = append(r.events, e)
}

type mockProducer struct {
	topic string
	key   string
	event interface{}
	err   error
}

func (m *mockProducer) Publish(_ context.Context, topic, key string, event interface{}) error {
	m.topic, m.key, m.event = topic, key, event
	return m.err
}

func TestNewWatchlistsRefreshed(t *testing.T) {
	pass := quotesync.Pass{ID: uuid.New(), UserID: "u-1", Watchlists: 2, Updated: 5, Failed: 1, Duration: 1500 * time.Millisecond}

	e := NewWatchlistsRefreshed(pass)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, pass.ID, e.PassID)
	assert.Equal(t, "u-1", e.UserID)
	assert.Equal(t, 5, e.Updated)
	assert.Equal(t, int64(1500), e.DurationMS)
}

func TestBroadcaster_DeliversToSubscribers(t *testing.T) {
	b := NewBroadcaster()
	first, cancelFirst := b.Subscribe(1)
	second, cancelSecond := b.Subscribe(1)
	defer cancelSecond()

	e := WatchlistsRefreshed{ID: uuid.New()}
	b.Notify(context.Background(), e)

	assert.Equal(t, e, <-first)
	assert.Equal(t, e, <-second)

	cancelFirst()
	cancelFirst()
	assert.Equal(t, 1, b.Subscribers())

	_, open := <-first
	assert.False(t, open)
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			b.Notify(context.Background(), WatchlistsRefreshed{Updated: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a full subscriber")
	}
	assert.Equal(t, 0, (<-ch).Updated)
}

func TestKafkaPublisher_KeysByUser(t *testing.T) {
	p := &mockProducer{}
	pub := NewKafkaPublisher(p, "", logger.NewNop())

	e := WatchlistsRefreshed{ID: uuid.New(), UserID: "u-9"}
	pub.Notify(context.Background(), e)

	assert.Equal(t, TopicWatchlistsRefreshed, p.topic)
	assert.Equal(t, "u-9", p.key)
	assert.Equal(t, e, p.event)

	p.err = assert.AnError
	assert.NotPanics(t, func() { pub.Notify(context.Background(), e) })
}

func TestFanout(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	Fanout{a, b}.Notify(context.Background(), WatchlistsRefreshed{Updated: 1})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
}
