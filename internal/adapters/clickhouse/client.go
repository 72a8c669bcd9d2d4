package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"quotewatch/internal/adapters/config"
	"quotewatch/pkg/errors"
)

// quoteHistorySchema stores one row per priced quote per refresh pass
const quoteHistorySchema = `
CREATE TABLE IF NOT EXISTS quote_history (
	pass_id     UUID,
	user_id     String,
	watchlist   String,
	symbol      LowCardinality(String),
	bid         Decimal(18, 6),
	ask         Decimal(18, 6),
	last        Decimal(18, 6),
	observed_at DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (user_id, symbol, observed_at)`

// Client owns the quote history connection
type Client struct {
	conn driver.Conn
}

// NewClient opens the connection and pings it
func NewClient(ctx context.Context, cfg config.ClickHouseConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 2, // one flusher plus health checks
	})
	if err != nil {
		return nil, errors.Join(errors.ErrPersistence, errors.Wrap(err, "failed to open clickhouse"))
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to ping clickhouse database %s", cfg.Database))
	}

	return &Client{conn: conn}, nil
}

// EnsureQuoteHistory creates quote_history when missing
func (c *Client) EnsureQuoteHistory(ctx context.Context) error {
	if err := c.conn.Exec(ctx, quoteHistorySchema); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrap(err, "failed to create quote_history"))
	}
	return nil
}

// Conn returns the underlying connection for repositories
func (c *Client) Conn() driver.Conn {
	return c.conn
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Health checks ClickHouse connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
