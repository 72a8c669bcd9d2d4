package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"quotewatch/internal/adapters/clickhouse"
	"quotewatch/internal/adapters/config"
	"quotewatch/internal/adapters/errors/noop"
	"quotewatch/internal/adapters/errors/sentry"
	"quotewatch/internal/adapters/kafka"
	"quotewatch/internal/adapters/postgres"
	"quotewatch/internal/adapters/quoteservice"
	"quotewatch/internal/adapters/redis"
	"quotewatch/internal/api/health"
	"quotewatch/internal/bootstrap"
	"quotewatch/internal/domain/session"
	"quotewatch/internal/domain/watchlist"
	pgrepo "quotewatch/internal/repository/postgres"
	redisrepo "quotewatch/internal/repository/redis"
	"quotewatch/internal/services/quotes"
	"quotewatch/internal/services/quotesync"
	sessionsvc "quotewatch/internal/services/session"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// stdout receives command output
var stdout io.Writer = os.Stdout

// app holds everything a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	tracker errors.Tracker
	repo    watchlist.Repository
	quotes  *quoteservice.Client
	manager *sessionsvc.Manager
	engine  *quotesync.Engine
	out     io.Writer
	health  map[string]health.CheckFunc

	pgClient    *postgres.Client
	redisClient *redis.Client
	chClient    *clickhouse.Client
	producer    *kafka.Producer

	shutdownOnce sync.Once
	shutdownErr  error
}

// newApp loads configuration, initializes logging and error tracking,
// connects the persistence backend and wires the sync engine
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Name); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}
	log := logger.Get()

	a := &app{
		cfg:    cfg,
		log:    log,
		out:    stdout,
		health: make(map[string]health.CheckFunc),
	}

	a.tracker = initErrorTracker(cfg, log)
	logger.SetErrorTracker(a.tracker)

	if err := a.initPersistence(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.quotes = quoteservice.NewClient(cfg.QuoteService)
	a.manager = sessionsvc.NewManager(session.New(), a.repo, a.tracker, log)
	a.engine = quotesync.NewEngine(a.manager.Session(), quotes.NewFetcher(a.quotes, cfg.QuoteService.QuotesURL), log)

	return a, nil
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func (a *app) initPersistence(ctx context.Context) error {
	switch a.cfg.Persistence.Backend {
	case config.BackendPostgres:
		client, err := postgres.NewClient(ctx, a.cfg.Postgres)
		if err != nil {
			return err
		}
		a.pgClient = client

		if err := client.EnsureSchema(ctx); err != nil {
			return err
		}
		a.repo = pgrepo.NewWatchlistRepository(client.DB())
		a.health["postgres"] = client.Health
	default:
		client, err := redis.NewClient(ctx, a.cfg.Redis, a.cfg.Persistence.KeyPrefix)
		if err != nil {
			return err
		}
		a.redisClient = client

		a.repo = redisrepo.NewWatchlistRepository(client)
		a.health["redis"] = client.Health
	}

	a.log.Debugw("Persistence ready", "backend", a.cfg.Persistence.Backend)
	return nil
}

// login signs in the configured user
func (a *app) login(ctx context.Context) error {
	if a.cfg.Session.UserID == "" {
		return errors.NewValidationError("SESSION_USER_ID", "required", "")
	}
	return a.manager.Login(ctx, a.cfg.Session.UserID, a.cfg.Session.UserName)
}

// shutdown runs the lifecycle once. c supplies the runtime components; the
// session, connections and tracker owned by a are filled in here.
func (a *app) shutdown(c bootstrap.Components) error {
	a.shutdownOnce.Do(func() {
		c.Session = a.manager
		c.Producer = a.producer
		c.Postgres = a.pgClient
		c.Redis = a.redisClient
		c.ClickHouse = a.chClient
		c.ErrorTracker = a.tracker
		a.shutdownErr = bootstrap.NewLifecycle().Shutdown(c, a.log)
	})
	return a.shutdownErr
}

// close releases everything when no runtime components were started
func (a *app) close() {
	if err := a.shutdown(bootstrap.Components{}); err != nil {
		a.log.Errorw("Shutdown lost data", "error", err)
	}
}

// withSession creates the app, logs in, runs fn and then shuts down, which
// persists every change fn made
func withSession(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	if err := a.login(ctx); err != nil {
		a.close()
		return err
	}

	var merr errors.MultiError
	merr.Add(fn(a))
	merr.Add(a.shutdown(bootstrap.Components{}))
	return merr.ToError()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
}
