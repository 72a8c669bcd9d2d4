package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"quotewatch/internal/adapters/config"
	"quotewatch/pkg/errors"
)

// watchlistSnapshotsSchema holds one row per (user, watchlist name). The
// payload column is the legacy watchlist codec string.
const watchlistSnapshotsSchema = `
CREATE TABLE IF NOT EXISTS watchlist_snapshots (
	user_id    TEXT        NOT NULL,
	name       TEXT        NOT NULL,
	payload    TEXT        NOT NULL,
	saved_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, name)
)`

// Client owns the watchlist snapshot database
type Client struct {
	db *sqlx.DB
}

// NewClient connects and sizes the pool. A session saves its whole map in a
// single transaction, so a handful of connections is plenty.
func NewClient(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to connect to postgres at %s:%d", cfg.Host, cfg.Port))
	}

	open, idle := poolSize(cfg.MaxConns)
	db.SetMaxOpenConns(open)
	db.SetMaxIdleConns(idle)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return &Client{db: db}, nil
}

// poolSize keeps at least one open and one idle connection
func poolSize(maxConns int) (open, idle int) {
	open = maxConns
	if open < 1 {
		open = 1
	}
	idle = open / 2
	if idle < 1 {
		idle = 1
	}
	return open, idle
}

// EnsureSchema creates watchlist_snapshots when missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, watchlistSnapshotsSchema); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrap(err, "failed to create watchlist_snapshots"))
	}
	return nil
}

// DB returns the pool for repositories
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the pool
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks database connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
