package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	kafkago "github.com/segmentio/kafka-go"

	"quotewatch/internal/adapters/config"
	"quotewatch/internal/adapters/kafka"
	"quotewatch/internal/events"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

type tailCmd struct {
	group string
}

func (*tailCmd) Name() string     { return "tail" }
func (*tailCmd) Synopsis() string { return "follow refresh events published to Kafka" }
func (*tailCmd) Usage() string {
	return `quotewatch tail [-g <group>]

  Prints every watchlists.refreshed event as it arrives until interrupted.
`
}

func (c *tailCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "g", "", "Consumer group id (empty reads without committing offsets).")
}

func (c *tailCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env, cfg.App.Name); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Kafka.Enabled {
		fail(errors.New("kafka is disabled, set KAFKA_ENABLED=true"))
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: c.group,
		Topic:   cfg.Kafka.WatchlistsTopic,
	})
	defer func() { _ = consumer.Close() }()

	err = consumer.Consume(ctx, printEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printEvent writes one decoded refresh event as a single line
func printEvent(_ context.Context, msg kafkago.Message) error {
	var event events.WatchlistsRefreshed
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return errors.Wrap(err, "failed to decode event")
	}

	fmt.Fprintf(stdout, "%s user=%s watchlists=%d updated=%d failed=%d took=%dms\n",
		event.OccurredAt.Format(time.RFC3339), event.UserID,
		event.Watchlists, event.Updated, event.Failed, event.DurationMS)
	return nil
}
