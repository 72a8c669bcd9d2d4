package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
)

const backend = "clickhouse"

// Compile-time check
var _ quote.HistoryRepository = (*QuoteHistoryRepository)(nil)

// QuoteHistoryRepository implements quote.HistoryRepository using ClickHouse
type QuoteHistoryRepository struct {
	conn driver.Conn
}

// NewQuoteHistoryRepository creates a new quote history repository
func NewQuoteHistoryRepository(conn driver.Conn) *QuoteHistoryRepository {
	return &QuoteHistoryRepository{conn: conn}
}

// InsertTicks inserts ticks in batch
func (r *QuoteHistoryRepository) InsertTicks(ctx context.Context, ticks []quote.Tick) (err error) {
	if len(ticks) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordPersistence(backend, "insert", time.Since(start), err) }()

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO quote_history (
			pass_id, user_id, watchlist, symbol, bid, ask, last, observed_at
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, t := range ticks {
		err = batch.Append(t.PassID, t.UserID, t.Watchlist, t.Symbol, t.Bid, t.Ask, t.Last, t.ObservedAt)
		if err != nil {
			_ = batch.Abort()
			return errors.Wrap(err, "failed to append tick")
		}
	}

	if err = batch.Send(); err != nil {
		return errors.Wrap(err, "failed to send batch")
	}
	return nil
}

// LatestTicks returns the most recent ticks of symbol for userID, newest first
func (r *QuoteHistoryRepository) LatestTicks(ctx context.Context, userID, symbol string, limit int) ([]quote.Tick, error) {
	var ticks []quote.Tick

	sql := `
		SELECT pass_id, user_id, watchlist, symbol, bid, ask, last, observed_at
		FROM quote_history
		WHERE user_id = $1 AND symbol = $2
		ORDER BY observed_at DESC
		LIMIT $3`

	if err := r.conn.Select(ctx, &ticks, sql, userID, quote.NormalizeSymbol(symbol), limit); err != nil {
		return nil, errors.Wrap(err, "failed to query quote history")
	}
	return ticks, nil
}
