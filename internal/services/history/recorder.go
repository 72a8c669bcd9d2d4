package history

import (
	"context"
	"time"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/services/quotesync"
	"quotewatch/pkg/clickhouse"
	"quotewatch/pkg/logger"
)

// Recorder buffers quotes merged during refresh passes and writes them to
// the history repository in batches
type Recorder struct {
	writer *clickhouse.BatchWriter[quote.Tick]
	now    func() time.Time
	log    *logger.Logger
}

// Compile-time check
var _ quotesync.Recorder = (*Recorder)(nil)

// Config controls batching
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// NewRecorder creates a recorder over repo
func NewRecorder(repo quote.HistoryRepository, cfg Config) *Recorder {
	return &Recorder{
		writer: clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig[quote.Tick]{
			FlushFunc:    repo.InsertTicks,
			TableName:    "quote_history",
			MaxBatchSize: cfg.BatchSize,
			MaxAge:       cfg.FlushInterval,
		}),
		now: time.Now,
		log: logger.Get().With("component", "quote_history"),
	}
}

// Start begins periodic flushing
func (r *Recorder) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop flushes buffered ticks
func (r *Recorder) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// Record buffers one tick per priced quote. Unpriced quotes are skipped.
func (r *Recorder) Record(ctx context.Context, pass quotesync.Pass, watchlistName string, quotes []quote.Quote) {
	observedAt := r.now().UTC()

	ticks := make([]quote.Tick, 0, len(quotes))
	for _, q := range quotes {
		tick, ok := quote.NewTick(q, observedAt)
		if !ok {
			continue
		}
		tick.PassID = pass.ID
		tick.UserID = pass.UserID
		tick.Watchlist = watchlistName
		ticks = append(ticks, tick)
	}
	if len(ticks) == 0 {
		return
	}

	// history is best effort and never fails a refresh
	if err := r.writer.Add(ctx, ticks...); err != nil {
		r.log.Warnw("Failed to write quote history", "watchlist", watchlistName, "error", err)
	}
}

// Buffered returns the number of ticks waiting to be written
func (r *Recorder) Buffered() int {
	return r.writer.BufferSize()
}
