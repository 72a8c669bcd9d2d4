package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"quotewatch/internal/adapters/config"
	redisclient "quotewatch/internal/adapters/redis"
)

// NewRedisClient connects for integration tests under a key prefix unique to
// the test. Every key under it is purged on cleanup, so tests never touch
// data outside their own namespace.
func NewRedisClient(t *testing.T, cfg config.RedisConfig) *redisclient.Client {
	t.Helper()

	client, err := redisclient.NewClient(context.Background(), cfg, "test:"+uuid.NewString())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		if _, err := client.Purge(context.Background()); err != nil {
			t.Logf("failed to purge %s: %v", client.Prefix(), err)
		}
		_ = client.Close()
	})

	return client
}
