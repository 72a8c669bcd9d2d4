package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/testsupport"
)

func TestQuoteHistoryRepository_InsertAndLatest(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	helper := testsupport.NewClickHouseTestHelper(t, testsupport.ClickHouseConfigFromEnv(t))
	repo := NewQuoteHistoryRepository(helper.Conn())
	ctx := context.Background()

	userID := "test-" + uuid.NewString()
	passID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	ticks := []quote.Tick{
		{PassID: passID, UserID: userID, Watchlist: "A", Symbol: "AAPL", Last: decimal.RequireFromString("100.25"), ObservedAt: base},
		{PassID: passID, UserID: userID, Watchlist: "A", Symbol: "AAPL", Last: decimal.RequireFromString("101.50"), ObservedAt: base.Add(time.Second)},
		{PassID: passID, UserID: userID, Watchlist: "A", Symbol: "GOOG", Last: decimal.RequireFromString("1"), ObservedAt: base},
	}
	require.NoError(t, repo.InsertTicks(ctx, ticks))

	latest, err := repo.LatestTicks(ctx, userID, "aapl", 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Last.Equal(decimal.RequireFromString("101.50")))
	assert.Equal(t, passID, latest[0].PassID)
}

func TestQuoteHistoryRepository_InsertEmpty(t *testing.T) {
	repo := NewQuoteHistoryRepository(nil)
	assert.NoError(t, repo.InsertTicks(context.Background(), nil))
}
