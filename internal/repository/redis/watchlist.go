package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	redisclient "quotewatch/internal/adapters/redis"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
)

const backend = "redis"

// Compile-time check
var _ watchlist.Repository = (*WatchlistRepository)(nil)

// WatchlistRepository implements watchlist.Repository with one hash per user:
// field = watchlist name, value = encoded watchlist
type WatchlistRepository struct {
	client *redis.Client
	keys   *redisclient.Client
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(client *redisclient.Client) *WatchlistRepository {
	return &WatchlistRepository{
		client: client.Client(),
		keys:   client,
	}
}

// LoadAll returns every stored watchlist of userID. A missing key yields an empty map.
func (r *WatchlistRepository) LoadAll(ctx context.Context, userID string) (data map[string]string, err error) {
	defer observe("load", time.Now(), &err)

	data, err = r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to load watchlists: user_id=%s", userID))
	}
	return data, nil
}

// SaveAll replaces the stored map of userID in one MULTI block
func (r *WatchlistRepository) SaveAll(ctx context.Context, userID string, data map[string]string) (err error) {
	defer observe("save", time.Now(), &err)

	key := r.key(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(data) > 0 {
			pipe.HSet(ctx, key, data)
		}
		return nil
	})
	if err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to save watchlists: user_id=%s", userID))
	}
	return nil
}

// Clear removes every stored watchlist of userID
func (r *WatchlistRepository) Clear(ctx context.Context, userID string) (err error) {
	defer observe("clear", time.Now(), &err)

	if err = r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to clear watchlists: user_id=%s", userID))
	}
	return nil
}

// Health pings redis
func (r *WatchlistRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *WatchlistRepository) key(userID string) string {
	return r.keys.WatchlistKey(userID)
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordPersistence(backend, operation, time.Since(start), *err)
}
