package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"quotewatch/internal/adapters/config"
	"quotewatch/pkg/errors"
)

// DefaultKeyPrefix namespaces watchlist hashes when no prefix is configured
const DefaultKeyPrefix = "watchlists"

// Client wraps Redis and owns the watchlist key scheme: one hash per user at
// <prefix>:<userID>
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient connects and verifies the server answers
func NewClient(ctx context.Context, cfg config.RedisConfig, keyPrefix string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to connect to redis at %s", cfg.Addr()))
	}

	return Wrap(rdb, keyPrefix), nil
}

// Wrap adopts an existing connection
func Wrap(rdb *redis.Client, keyPrefix string) *Client {
	keyPrefix = strings.TrimRight(strings.TrimSpace(keyPrefix), ":")
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Client{rdb: rdb, prefix: keyPrefix}
}

// WatchlistKey returns the hash holding userID's watchlists
func (c *Client) WatchlistKey(userID string) string {
	return c.prefix + ":" + userID
}

// Prefix returns the key namespace
func (c *Client) Prefix() string {
	return c.prefix
}

// Purge deletes every key under the prefix and reports how many went
func (c *Client) Purge(ctx context.Context) (int, error) {
	var deleted int
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, errors.Join(errors.ErrPersistence, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, errors.Join(errors.ErrPersistence, err)
	}
	return deleted, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks Redis connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
