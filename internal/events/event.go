package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quotewatch/internal/services/quotesync"
)

// TopicWatchlistsRefreshed carries one message per successful refresh pass
const TopicWatchlistsRefreshed = "watchlists.refreshed"

// WatchlistsRefreshed is the "data changed" signal sent after a refresh pass
type WatchlistsRefreshed struct {
	ID         uuid.UUID `json:"id"`
	PassID     uuid.UUID `json:"pass_id"`
	UserID     string    `json:"user_id"`
	Watchlists int       `json:"watchlists"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewWatchlistsRefreshed builds the event for a completed pass
func NewWatchlistsRefreshed(pass quotesync.Pass) WatchlistsRefreshed {
	return WatchlistsRefreshed{
		ID:         uuid.New(),
		PassID:     pass.ID,
		UserID:     pass.UserID,
		Watchlists: pass.Watchlists,
		Updated:    pass.Updated,
		Failed:     pass.Failed,
		DurationMS: pass.Duration.Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier delivers data changed events. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event WatchlistsRefreshed)
}

// Fanout delivers every event to each notifier in order
type Fanout []Notifier

// Notify implements Notifier
func (f Fanout) Notify(ctx context.Context, event WatchlistsRefreshed) {
	for _, n := range f {
		n.Notify(ctx, event)
	}
}
