package bootstrap

import (
	"context"
	"time"

	chclient "quotewatch/internal/adapters/clickhouse"
	"quotewatch/internal/adapters/kafka"
	pgclient "quotewatch/internal/adapters/postgres"
	redisclient "quotewatch/internal/adapters/redis"
	"quotewatch/internal/api"
	"quotewatch/internal/services/history"
	sessionsvc "quotewatch/internal/services/session"
	"quotewatch/internal/workers"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// Components is everything Shutdown may need to stop. Nil fields are skipped.
type Components struct {
	HTTPServer *api.Server
	Scheduler  *workers.RefreshScheduler
	Session    *sessionsvc.Manager
	History    *history.Recorder
	Producer   *kafka.Producer

	Postgres   *pgclient.Client
	ClickHouse *chclient.Client
	Redis      *redisclient.Client

	ErrorTracker errors.Tracker
}

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 15 * time.Second,
	}
}

// Shutdown stops components in dependency order:
// 1. No new requests accepted
// 2. Timers stopped and the running pass drained
// 3. Watchlists persisted and the session ended
// 4. Buffered quote history flushed
// 5. Producer closed
// 6. Errors and logs flushed
// 7. Database connections last (the steps above still need them)
//
// The returned error reports failures that lost data: the watchlist flush
// and the history flush.
func (l *Lifecycle) Shutdown(c Components, log *logger.Logger) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	var lost errors.MultiError

	if c.HTTPServer != nil {
		log.Info("[1/7] Stopping HTTP server...")
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		if err := c.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	if c.Scheduler != nil {
		log.Info("[2/7] Stopping refresh scheduler...")
		c.Scheduler.Stop()
		if err := c.Scheduler.Wait(shutdownCtx); err != nil {
			log.Warnw("Refresh pass still running at shutdown", "error", err)
		} else {
			log.Info("✓ Refresh scheduler stopped")
		}
	}

	if c.Session != nil && c.Session.Session().LoggedIn() {
		log.Info("[3/7] Saving watchlists...")
		if err := c.Session.Logout(shutdownCtx); err != nil {
			lost.Add(err)
		} else {
			log.Info("✓ Watchlists saved")
		}
	}

	if c.History != nil {
		log.Info("[4/7] Flushing quote history...")
		if err := c.History.Stop(shutdownCtx); err != nil {
			log.Errorw("Quote history flush failed", "error", err)
			lost.Add(err)
		} else {
			log.Info("✓ Quote history flushed")
		}
	}

	if c.Producer != nil {
		log.Info("[5/7] Closing Kafka producer...")
		if err := c.Producer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		}
	}

	log.Debug("[6/7] Flushing error tracker and logs...")
	l.flushErrorTracker(shutdownCtx, c.ErrorTracker, log)
	_ = logger.Sync()

	log.Debug("[7/7] Closing database connections...")
	l.closeDatabases(c.Postgres, c.ClickHouse, c.Redis, log)

	return lost.ToError()
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

// closeDatabases closes all database connections
func (l *Lifecycle) closeDatabases(
	pgClient *pgclient.Client,
	chClient *chclient.Client,
	redisClient *redisclient.Client,
	log *logger.Logger,
) {
	var dbErrors []error

	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "postgres"))
		}
	}

	if chClient != nil {
		if err := chClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "clickhouse"))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "redis"))
		}
	}

	if len(dbErrors) > 0 {
		log.Errorw("Database close errors", "errors", dbErrors)
	}
}
