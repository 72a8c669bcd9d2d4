package cli

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"

	"quotewatch/internal/adapters/clickhouse"
	"quotewatch/internal/adapters/kafka"
	"quotewatch/internal/api"
	"quotewatch/internal/api/health"
	"quotewatch/internal/bootstrap"
	"quotewatch/internal/events"
	"quotewatch/internal/metrics"
	chrepo "quotewatch/internal/repository/clickhouse"
	"quotewatch/internal/services/history"
	"quotewatch/internal/workers"
	"quotewatch/internal/workers/quoterefresh"
)

type serveCmd struct {
	inactive bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "keep watchlists fresh in the background and serve them over HTTP" }
func (*serveCmd) Usage() string {
	return `quotewatch serve [-inactive]

  Logs in SESSION_USER_ID, waits REFRESH_GRACE_DELAY, then refreshes every
  watchlist each REFRESH_INTERVAL while a client has the view active.
  Watchlists are persisted on shutdown.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.inactive, "inactive", false, "Start with the view inactive until a client sets it.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.run(ctx); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log
	log.Infof("Starting %s %s in %s mode", a.cfg.App.Name, a.cfg.App.Version, a.cfg.App.Env)
	metrics.Init()

	if err := a.login(ctx); err != nil {
		return err
	}

	recorder, err := c.initHistory(ctx, a)
	if err != nil {
		return err
	}

	broadcaster := events.NewBroadcaster()
	notifier := events.Fanout{broadcaster}
	if a.cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(kafka.ProducerConfig{Brokers: a.cfg.Kafka.Brokers})
		notifier = append(notifier, events.NewKafkaPublisher(a.producer, a.cfg.Kafka.WatchlistsTopic, log))
		log.Infow("Publishing refresh events to Kafka", "topic", a.cfg.Kafka.WatchlistsTopic)
	}

	updates, unsubscribe := broadcaster.Subscribe(8)
	defer unsubscribe()
	go func() {
		for event := range updates {
			log.Infow("Watchlists refreshed",
				"pass_id", event.PassID,
				"updated", event.Updated,
				"failed", event.Failed,
				"duration_ms", event.DurationMS,
			)
		}
	}()

	sess := a.manager.Session()
	prometheus.MustRegister(metrics.NewSessionCollector(func() metrics.SessionStats {
		stats := metrics.SessionStats{LoggedIn: sess.LoggedIn()}
		lists := sess.Store().OrderedView()
		stats.Watchlists = len(lists)
		for _, wl := range lists {
			stats.Symbols += len(wl.Quotes)
		}
		if recorder != nil {
			stats.Buffered = recorder.Buffered()
		}
		return stats
	}))

	view := api.NewActiveView(!c.inactive)
	worker := quoterefresh.New(a.engine, notifier, a.cfg.Refresh.Interval)
	scheduler, err := workers.NewRefreshScheduler(worker, view.Active, workers.SchedulerConfig{
		GraceDelay: a.cfg.Refresh.GraceDelay,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(
		api.ServerConfig{Addr: a.cfg.App.HTTPAddr, ServiceName: a.cfg.App.Name, Version: a.cfg.App.Version},
		health.New(log, a.health, a.cfg.App.Name, a.cfg.App.Version),
		api.NewWatchlistsHandler(sess, a.engine, notifier, view, log),
		log,
	)

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	scheduler.ScheduleToStart(ctx)
	log.Infow("Refresh scheduled",
		"grace_delay", a.cfg.Refresh.GraceDelay,
		"interval", a.cfg.Refresh.Interval,
	)

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Errorw("HTTP server stopped unexpectedly", "error", err)
		}
	}

	return a.shutdown(bootstrap.Components{
		HTTPServer: server,
		Scheduler:  scheduler,
		History:    recorder,
	})
}

// initHistory starts the quote history recorder when ClickHouse is enabled
func (c *serveCmd) initHistory(ctx context.Context, a *app) (*history.Recorder, error) {
	if !a.cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := clickhouse.NewClient(ctx, a.cfg.ClickHouse)
	if err != nil {
		return nil, err
	}
	a.chClient = client
	a.health["clickhouse"] = client.Health

	if err := client.EnsureQuoteHistory(ctx); err != nil {
		return nil, err
	}
	repo := chrepo.NewQuoteHistoryRepository(client.Conn())

	recorder := history.NewRecorder(repo, history.Config{
		BatchSize:     a.cfg.ClickHouse.BatchSize,
		FlushInterval: a.cfg.ClickHouse.FlushInterval,
	})
	recorder.Start(context.WithoutCancel(ctx))
	a.engine.WithRecorder(recorder)

	a.log.Infow("Quote history enabled", "database", a.cfg.ClickHouse.Database)
	return recorder, nil
}
