package quoterefresh

import (
	"context"
	"time"

	"quotewatch/internal/events"
	"quotewatch/internal/services/quotesync"
	"quotewatch/internal/workers"
	"quotewatch/pkg/errors"
)

// Name identifies the worker in logs and metrics
const Name = "quote_refresh"

// Engine runs one refresh pass over every watchlist
type Engine interface {
	RefreshAll(ctx context.Context) (quotesync.Pass, error)
}

// Worker refreshes all watchlists on each scheduler tick and emits a data
// changed event after every successful pass. Failures stay in the logs.
type Worker struct {
	*workers.BaseWorker
	engine   Engine
	notifier events.Notifier
}

// Compile-time check
var _ workers.WorkerWithHealth = (*Worker)(nil)

// New creates the refresh worker
func New(engine Engine, notifier events.Notifier, interval time.Duration) *Worker {
	return &Worker{
		BaseWorker: workers.NewBaseWorker(Name, interval, true),
		engine:     engine,
		notifier:   notifier,
	}
}

// Run performs one refresh pass
func (w *Worker) Run(ctx context.Context) error {
	start := time.Now()

	pass, err := w.engine.RefreshAll(ctx)
	switch {
	case errors.Is(err, errors.ErrAlreadyInProgress),
		errors.Is(err, errors.ErrNotLoggedIn),
		errors.Is(err, errors.ErrNoWatchlists):
		w.Log().Debugw("Refresh skipped", "reason", err)
		w.RecordSkip()
		return nil

	case err != nil:
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "refresh pass failed")
	}

	w.RecordRun(time.Since(start))

	if w.notifier != nil {
		w.notifier.Notify(ctx, events.NewWatchlistsRefreshed(pass))
	}
	return nil
}
