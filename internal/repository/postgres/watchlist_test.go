package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/internal/testsupport"
)

func newRepo(t *testing.T) (*WatchlistRepository, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}

	client := testsupport.NewPostgresClient(t, testsupport.PostgresConfigFromEnv(t))
	repo := NewWatchlistRepository(client.DB())

	userID := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Clear(context.Background(), userID) })
	return repo, userID
}

func TestWatchlistRepository_SaveLoadRoundTrip(t *testing.T) {
	repo, userID := newRepo(t)
	ctx := context.Background()

	store := watchlist.NewStore()
	store.Upsert(watchlist.New("Tech", []quote.Quote{quote.New("MSFT"), quote.New("AAPL")}, 1))
	store.Upsert(watchlist.New("Energy", []quote.Quote{quote.New("XOM")}, 0))

	require.NoError(t, repo.SaveAll(ctx, userID, store.SerializeAll()))

	loaded, err := repo.LoadAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, store.SerializeAll(), loaded)
}

func TestWatchlistRepository_SaveAllReplacesWholeMap(t *testing.T) {
	repo, userID := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, userID, map[string]string{"A": "a", "B": "b"}))
	require.NoError(t, repo.SaveAll(ctx, userID, map[string]string{"C": "c"}))

	loaded, err := repo.LoadAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"C": "c"}, loaded)
}

func TestWatchlistRepository_Clear(t *testing.T) {
	repo, userID := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, userID, map[string]string{"A": "a"}))
	require.NoError(t, repo.Clear(ctx, userID))

	loaded, err := repo.LoadAll(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NoError(t, repo.Health(ctx))
}
