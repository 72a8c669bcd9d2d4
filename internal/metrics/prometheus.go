package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error|skipped
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotewatch_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quotewatch_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	SchedulerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotewatch_refresh_scheduler_state",
			Help: "Refresh scheduler state (0=idle, 1=scheduled, 2=refreshing)",
		},
	)

	// Sync metrics
	RefreshPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_refresh_passes_total",
			Help: "Total number of refresh-all passes",
		},
		[]string{"status"}, // status: success|not_logged_in|in_progress|empty|error
	)

	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quotewatch_refresh_pass_duration_seconds",
			Help:    "Duration of a full refresh pass in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	WatchlistRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_watchlist_refreshes_total",
			Help: "Total number of single watchlist refreshes",
		},
		[]string{"status"}, // status: success|error
	)

	QuotesUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotewatch_quotes_updated_total",
			Help: "Total number of quote records replaced by fetched data",
		},
	)

	// Quote service metrics
	QuoteServiceCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_quote_service_calls_total",
			Help: "Total number of quote service requests",
		},
		[]string{"endpoint", "status"}, // endpoint: quotes|search
	)

	QuoteServiceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotewatch_quote_service_latency_seconds",
			Help:    "Quote service request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	RowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotewatch_quote_rows_dropped_total",
			Help: "Quote service rows dropped for having fewer than four columns",
		},
	)

	// Persistence metrics
	PersistenceOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_persistence_operations_total",
			Help: "Total number of persistence gateway operations",
		},
		[]string{"backend", "operation", "status"}, // operation: load|save|clear
	)

	PersistenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotewatch_persistence_duration_seconds",
			Help:    "Persistence gateway operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"backend", "operation"},
	)

	// Event metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotewatch_events_published_total",
			Help: "Total data-changed events published",
		},
		[]string{"sink", "status"}, // sink: broadcast|kafka
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			WorkerExecutions,
			WorkerDuration,
			WorkerLastRun,
			SchedulerState,
			RefreshPasses,
			RefreshDuration,
			WatchlistRefreshes,
			QuotesUpdated,
			QuoteServiceCalls,
			QuoteServiceLatency,
			RowsDropped,
			PersistenceOps,
			PersistenceDuration,
			EventsPublished,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordWorkerSkip records a tick that did no work
func RecordWorkerSkip(worker string) {
	WorkerExecutions.WithLabelValues(worker, "skipped").Inc()
}

// RecordRefreshPass records the outcome of a refresh-all pass
func RecordRefreshPass(outcome string, duration time.Duration) {
	RefreshPasses.WithLabelValues(outcome).Inc()
	if duration > 0 {
		RefreshDuration.Observe(duration.Seconds())
	}
}

// RecordWatchlistRefresh records one watchlist fetch and the records it replaced
func RecordWatchlistRefresh(updated int, err error) {
	WatchlistRefreshes.WithLabelValues(status(err)).Inc()
	if updated > 0 {
		QuotesUpdated.Add(float64(updated))
	}
}

// RecordQuoteServiceCall records a quote service request
func RecordQuoteServiceCall(endpoint string, latency time.Duration, err error) {
	QuoteServiceCalls.WithLabelValues(endpoint, status(err)).Inc()
	QuoteServiceLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordPersistence records a persistence gateway operation
func RecordPersistence(backend, operation string, duration time.Duration, err error) {
	PersistenceOps.WithLabelValues(backend, operation, status(err)).Inc()
	PersistenceDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordEvent records a data-changed event delivery
func RecordEvent(sink string, err error) {
	EventsPublished.WithLabelValues(sink, status(err)).Inc()
}
