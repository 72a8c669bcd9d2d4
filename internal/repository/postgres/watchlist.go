package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"quotewatch/internal/domain/watchlist"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
)

const backend = "postgres"

// Compile-time check
var _ watchlist.Repository = (*WatchlistRepository)(nil)

type snapshotRow struct {
	UserID  string    `db:"user_id"`
	Name    string    `db:"name"`
	Payload string    `db:"payload"`
	SavedAt time.Time `db:"saved_at"`
}

// WatchlistRepository implements watchlist.Repository using sqlx over the
// watchlist_snapshots table created by the postgres client
type WatchlistRepository struct {
	db *sqlx.DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *sqlx.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// LoadAll returns every stored watchlist of userID
func (r *WatchlistRepository) LoadAll(ctx context.Context, userID string) (data map[string]string, err error) {
	defer observe("load", time.Now(), &err)

	var rows []snapshotRow
	query := `SELECT user_id, name, payload, saved_at FROM watchlist_snapshots WHERE user_id = $1`
	if err = r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to load watchlists: user_id=%s", userID))
	}

	data = make(map[string]string, len(rows))
	for _, row := range rows {
		data[row.Name] = row.Payload
	}
	return data, nil
}

// SaveAll replaces the stored map of userID inside one transaction
func (r *WatchlistRepository) SaveAll(ctx context.Context, userID string, data map[string]string) (err error) {
	defer observe("save", time.Now(), &err)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrap(err, "failed to begin transaction"))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM watchlist_snapshots WHERE user_id = $1`, userID); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to delete watchlists: user_id=%s", userID))
	}

	if len(data) > 0 {
		now := time.Now().UTC()
		rows := make([]snapshotRow, 0, len(data))
		for name, payload := range data {
			rows = append(rows, snapshotRow{UserID: userID, Name: name, Payload: payload, SavedAt: now})
		}

		query := `
			INSERT INTO watchlist_snapshots (user_id, name, payload, saved_at)
			VALUES (:user_id, :name, :payload, :saved_at)`
		if _, err = tx.NamedExecContext(ctx, query, rows); err != nil {
			return errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to insert watchlists: user_id=%s", userID))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrap(err, "failed to commit watchlists"))
	}
	return nil
}

// Clear removes every stored watchlist of userID
func (r *WatchlistRepository) Clear(ctx context.Context, userID string) (err error) {
	defer observe("clear", time.Now(), &err)

	if _, err = r.db.ExecContext(ctx, `DELETE FROM watchlist_snapshots WHERE user_id = $1`, userID); err != nil {
		return errors.Join(errors.ErrPersistence, errors.Wrapf(err, "failed to clear watchlists: user_id=%s", userID))
	}
	return nil
}

// Health pings the database
func (r *WatchlistRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordPersistence(backend, operation, time.Since(start), *err)
}
