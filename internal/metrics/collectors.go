package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionStats is a point-in-time view of the signed-in session
type SessionStats struct {
	LoggedIn   bool
	Watchlists int
	Symbols    int
	Buffered   int // quote history rows waiting for a flush
}

// SessionCollector reports session gauges at scrape time
type SessionCollector struct {
	stats func() SessionStats

	loggedIn   *prometheus.Desc
	watchlists *prometheus.Desc
	symbols    *prometheus.Desc
	buffered   *prometheus.Desc
}

// NewSessionCollector creates a collector reading stats on every scrape
func NewSessionCollector(stats func() SessionStats) *SessionCollector {
	return &SessionCollector{
		stats: stats,
		loggedIn: prometheus.NewDesc(
			"quotewatch_session_logged_in",
			"Whether a user is signed in (0/1)",
			nil, nil,
		),
		watchlists: prometheus.NewDesc(
			"quotewatch_session_watchlists",
			"Number of watchlists in the session",
			nil, nil,
		),
		symbols: prometheus.NewDesc(
			"quotewatch_session_symbols",
			"Number of tracked symbols across all watchlists",
			nil, nil,
		),
		buffered: prometheus.NewDesc(
			"quotewatch_quote_history_buffered",
			"Quote history rows waiting to be flushed",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.loggedIn
	ch <- c.watchlists
	ch <- c.symbols
	ch <- c.buffered
}

// Collect implements prometheus.Collector
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	loggedIn := 0.0
	if s.LoggedIn {
		loggedIn = 1
	}

	ch <- prometheus.MustNewConstMetric(c.loggedIn, prometheus.GaugeValue, loggedIn)
	ch <- prometheus.MustNewConstMetric(c.watchlists, prometheus.GaugeValue, float64(s.Watchlists))
	ch <- prometheus.MustNewConstMetric(c.symbols, prometheus.GaugeValue, float64(s.Symbols))
	ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Buffered))
}
