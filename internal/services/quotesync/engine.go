package quotesync

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/session"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// Fetcher resolves symbols to fresh quotes with one batch call
type Fetcher interface {
	Fetch(ctx context.Context, symbols []string) ([]quote.Quote, error)
}

// Recorder receives the quotes merged into a watchlist during a pass
type Recorder interface {
	Record(ctx context.Context, pass Pass, watchlistName string, quotes []quote.Quote)
}

// Pass describes one completed refresh-all pass
type Pass struct {
	ID         uuid.UUID
	UserID     string
	StartedAt  time.Time
	Duration   time.Duration
	Watchlists int
	Updated    int
	Failed     int
}

// Engine refreshes the session's watchlists. At most one refresh-all pass
// runs at a time; contending callers get ErrAlreadyInProgress immediately.
type Engine struct {
	session  *session.Session
	fetcher  Fetcher
	recorder Recorder
	running  atomic.Bool
	log      *logger.Logger
}

// NewEngine creates a sync engine over the session's store
func NewEngine(sess *session.Session, fetcher Fetcher, log *logger.Logger) *Engine {
	return &Engine{
		session: sess,
		fetcher: fetcher,
		log:     log.With("component", "sync_engine"),
	}
}

// WithRecorder attaches a quote history recorder
func (e *Engine) WithRecorder(r Recorder) *Engine {
	e.recorder = r
	return e
}

// InProgress reports whether a refresh-all pass is running
func (e *Engine) InProgress() bool {
	return e.running.Load()
}

// RefreshAll fetches quotes for every watchlist in display order, one
// watchlist at a time. Per-watchlist fetch failures are logged and do not fail
// the pass.
func (e *Engine) RefreshAll(ctx context.Context) (Pass, error) {
	userID, ok := e.session.UserID()
	if !ok {
		metrics.RecordRefreshPass("not_logged_in", 0)
		return Pass{}, errors.ErrNotLoggedIn
	}

	if !e.running.CompareAndSwap(false, true) {
		metrics.RecordRefreshPass("in_progress", 0)
		return Pass{}, errors.ErrAlreadyInProgress
	}
	defer e.running.Store(false)

	lists := e.session.Store().OrderedView()
	if len(lists) == 0 {
		metrics.RecordRefreshPass("empty", 0)
		return Pass{}, errors.ErrNoWatchlists
	}

	pass := Pass{
		ID:         uuid.New(),
		UserID:     userID,
		StartedAt:  time.Now(),
		Watchlists: len(lists),
	}
	log := e.log.With("pass_id", pass.ID, "user_id", userID)

	failures := &errors.MultiError{}
	for _, w := range lists {
		if err := ctx.Err(); err != nil {
			pass.Duration = time.Since(pass.StartedAt)
			metrics.RecordRefreshPass("error", pass.Duration)
			return pass, errors.Wrap(err, "refresh pass interrupted")
		}

		updated, err := e.refresh(ctx, &pass, w)
		if err != nil {
			pass.Failed++
			failures.Add(errors.Wrapf(err, "watchlist %q", w.Name))
			continue
		}
		pass.Updated += updated
	}

	pass.Duration = time.Since(pass.StartedAt)
	metrics.RecordRefreshPass("success", pass.Duration)

	if failures.HasErrors() {
		log.Warnw("Refresh pass finished with failed watchlists",
			"failed", pass.Failed,
			"watchlists", pass.Watchlists,
			"error", failures.ToError(),
		)
	} else {
		log.Debugw("Refresh pass finished",
			"watchlists", pass.Watchlists,
			"updated", pass.Updated,
			"duration", pass.Duration,
		)
	}

	return pass, nil
}

// RefreshAllAsync runs RefreshAll in the background. The channel receives the
// result once the single-flight guard has been released.
func (e *Engine) RefreshAllAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := e.RefreshAll(ctx)
		done <- err
		close(done)
	}()
	return done
}

// RefreshWatchlist fetches quotes for one watchlist outside of the
// refresh-all guard and returns how many records were replaced.
func (e *Engine) RefreshWatchlist(ctx context.Context, name string) (int, error) {
	userID, ok := e.session.UserID()
	if !ok {
		return 0, errors.ErrNotLoggedIn
	}

	w, ok := e.session.Store().Get(name)
	if !ok {
		return 0, errors.Wrapf(errors.ErrNotFound, "watchlist %q", name)
	}

	pass := Pass{ID: uuid.New(), UserID: userID, StartedAt: time.Now(), Watchlists: 1}
	return e.refresh(ctx, &pass, w)
}

// AddQuote starts tracking symbol in the named watchlist and immediately
// refreshes that watchlist. A failed refresh leaves the new record unpriced.
func (e *Engine) AddQuote(ctx context.Context, symbol, name string) error {
	symbol = quote.NormalizeSymbol(symbol)
	if symbol == "" || symbol == quote.Unknown || strings.ContainsAny(symbol, "+@") {
		return errors.NewValidationError("symbol", "invalid ticker symbol", symbol)
	}
	if !e.session.LoggedIn() {
		return errors.ErrNotLoggedIn
	}

	err := e.session.Store().Update(name, func(w *watchlist.Watchlist) {
		w.Add(symbol)
	})
	if err != nil {
		return err
	}

	if _, err := e.RefreshWatchlist(ctx, name); err != nil {
		e.log.Warnw("Failed to resolve added quote",
			"watchlist", name,
			"symbol", symbol,
			"error", err,
		)
	}
	return nil
}

// RemoveQuote stops tracking symbol in the named watchlist
func (e *Engine) RemoveQuote(name, symbol string) error {
	if !e.session.LoggedIn() {
		return errors.ErrNotLoggedIn
	}

	removed := false
	err := e.session.Store().Update(name, func(w *watchlist.Watchlist) {
		removed = w.RemoveSymbol(symbol)
	})
	if err != nil {
		return err
	}
	if !removed {
		return errors.Wrapf(errors.ErrNotFound, "symbol %q in watchlist %q", quote.NormalizeSymbol(symbol), name)
	}
	return nil
}

func (e *Engine) refresh(ctx context.Context, pass *Pass, w watchlist.Watchlist) (int, error) {
	fetched, err := e.fetcher.Fetch(ctx, w.Symbols())
	if err != nil {
		metrics.RecordWatchlistRefresh(0, err)
		return 0, err
	}

	updated := 0
	err = e.session.Store().Update(w.Name, func(stored *watchlist.Watchlist) {
		updated = stored.Merge(fetched)
	})
	if err != nil {
		// removed or renamed while the fetch was in flight
		e.log.Debugw("Dropping quotes for vanished watchlist", "watchlist", w.Name)
		metrics.RecordWatchlistRefresh(0, nil)
		return 0, nil
	}

	metrics.RecordWatchlistRefresh(updated, nil)

	if e.recorder != nil && updated > 0 {
		e.recorder.Record(ctx, *pass, w.Name, tracked(w, fetched))
	}
	return updated, nil
}

// tracked keeps the fetched rows whose symbol the watchlist follows
func tracked(w watchlist.Watchlist, fetched []quote.Quote) []quote.Quote {
	out := make([]quote.Quote, 0, len(fetched))
	for _, q := range fetched {
		if w.Has(quote.NormalizeSymbol(q.Symbol)) {
			out = append(out, q)
		}
	}
	return out
}
