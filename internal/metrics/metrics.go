// Package metrics exposes Prometheus instrumentation for the paper trader
// and backtest paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading stack, registered on
// a private registry so independent instances never collide.
type Metrics struct {
	reg *prometheus.Registry

	OrdersPlaced   prometheus.Counter
	OrdersRejected *prometheus.CounterVec // labels: reason

	BacktestRuns prometheus.Counter
	BacktestDur  prometheus.Histogram

	FeedCandles    prometheus.Counter
	FeedReconnects prometheus.Counter
	FeedDropped    prometheus.Counter

	RedisWriteDur   prometheus.Histogram
	SQLiteCommitDur prometheus.Histogram
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_orders_placed_total",
			Help: "Paper orders admitted by the risk gate and stored",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_orders_rejected_total",
			Help: "Order intents rejected by the pre-trade risk gate",
		}, []string{"reason"}),

		BacktestRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_backtest_runs_total",
			Help: "Backtest runs executed",
		}),
		BacktestDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_backtest_duration_seconds",
			Help:    "Backtest run duration",
			Buckets: prometheus.DefBuckets,
		}),

		FeedCandles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_feed_candles_total",
			Help: "Closed candles received from the market data feed",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_feed_reconnects_total",
			Help: "WebSocket feed reconnection attempts",
		}),
		FeedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_feed_dropped_total",
			Help: "Candles dropped because the fan-out channel was full",
		}),

		RedisWriteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_redis_write_duration_seconds",
			Help:    "Redis latest-candle write latency",
			Buckets: prometheus.DefBuckets,
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_sqlite_commit_duration_seconds",
			Help:    "SQLite candle insert latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.reg.MustRegister(
		m.OrdersPlaced,
		m.OrdersRejected,
		m.BacktestRuns,
		m.BacktestDur,
		m.FeedCandles,
		m.FeedReconnects,
		m.FeedDropped,
		m.RedisWriteDur,
		m.SQLiteCommitDur,
	)

	return m
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
