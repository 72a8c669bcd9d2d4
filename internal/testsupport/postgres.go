package testsupport

import (
	"context"
	"testing"

	"quotewatch/internal/adapters/config"
	"quotewatch/internal/adapters/postgres"
)

// NewPostgresClient connects for integration tests, ensures the snapshot
// schema and closes the pool on cleanup. Tests own their rows and must
// remove them themselves.
func NewPostgresClient(t *testing.T, cfg config.PostgresConfig) *postgres.Client {
	t.Helper()

	ctx := context.Background()
	client, err := postgres.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create postgres client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	return client
}
