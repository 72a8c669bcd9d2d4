package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/services/quotesync"
)

type mockHistoryRepo struct {
	mu    sync.Mutex
	ticks []quote.Tick
	err   error
}

func (m *mockHistoryRepo) InsertTicks(_ context.Context, ticks []quote.Tick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.ticks = append(m.ticks, ticks...)
	return nil
}

func (m *mockHistoryRepo) LatestTicks(context.Context, string, string, int) ([]quote.Tick, error) {
	return nil, nil
}

func TestRecorder_RecordSkipsUnpriced(t *testing.T) {
	repo := &mockHistoryRepo{}
	r := NewRecorder(repo, Config{BatchSize: 100, FlushInterval: time.Minute})
	observed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return observed }

	pass := quotesync.Pass{ID: uuid.New(), UserID: "user-1"}
	r.Record(context.Background(), pass, "Tech", []quote.Quote{
		{Symbol: "AAPL", BidPrice: "100.00", AskPrice: "100.50", LastPrice: "100.25"},
		{Symbol: "GOOG", BidPrice: quote.Unknown, AskPrice: quote.Unknown, LastPrice: quote.Unknown},
		{Symbol: "MSFT", BidPrice: "N/A", AskPrice: "1", LastPrice: "2"},
	})
	assert.Equal(t, 2, r.Buffered())

	require.NoError(t, r.Stop(context.Background()))
	require.Len(t, repo.ticks, 2)

	aapl := repo.ticks[0]
	assert.Equal(t, pass.ID, aapl.PassID)
	assert.Equal(t, "user-1", aapl.UserID)
	assert.Equal(t, "Tech", aapl.Watchlist)
	assert.True(t, aapl.Last.Equal(decimal.RequireFromString("100.25")))
	assert.Equal(t, observed, aapl.ObservedAt)

	assert.True(t, repo.ticks[1].Bid.IsZero(), "unparseable bid stored as zero")
}

func TestRecorder_FlushFailureIsSwallowed(t *testing.T) {
	repo := &mockHistoryRepo{err: assert.AnError}
	r := NewRecorder(repo, Config{BatchSize: 1, FlushInterval: time.Minute})

	assert.NotPanics(t, func() {
		r.Record(context.Background(), quotesync.Pass{}, "A", []quote.Quote{
			{Symbol: "AAPL", BidPrice: "1", AskPrice: "1", LastPrice: "1"},
		})
	})
	assert.Equal(t, 0, r.Buffered())
}
