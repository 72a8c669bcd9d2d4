package testsupport

import (
	"context"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"quotewatch/internal/adapters/clickhouse"
	"quotewatch/internal/adapters/config"
)

// ClickHouseTestHelper holds a quote history connection for integration tests
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper connects, ensures quote_history and closes on cleanup
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	ctx := context.Background()
	client, err := clickhouse.NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.EnsureQuoteHistory(ctx); err != nil {
		t.Fatalf("failed to ensure quote_history: %v", err)
	}
	return &ClickHouseTestHelper{client: client}
}

// Conn returns the underlying connection
func (h *ClickHouseTestHelper) Conn() driver.Conn {
	return h.client.Conn()
}
