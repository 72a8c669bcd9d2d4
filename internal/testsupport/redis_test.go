package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_ScopedPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	client := NewRedisClient(t, RedisConfigFromEnv(t))
	rdb := client.Client()

	key := client.WatchlistKey("u-1")
	require.NoError(t, rdb.HSet(ctx, key, "A", "a").Err())
	require.NoError(t, rdb.HSet(ctx, client.WatchlistKey("u-2"), "B", "b").Err())

	deleted, err := client.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	exists, err := rdb.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
