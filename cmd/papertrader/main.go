// cmd/papertrader runs the live paper-trading service: it ingests closed
// candles from the Binance WebSocket, records them (memory, SQLite, and an
// optional Redis cache), and serves the order/position/backtest HTTP API plus
// a live candle stream and Prometheus metrics.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradesim/config"
	"tradesim/internal/api"
	"tradesim/internal/history"
	"tradesim/internal/logger"
	"tradesim/internal/marketdata/bus"
	"tradesim/internal/marketdata/ws"
	"tradesim/internal/metrics"
	"tradesim/internal/model"
	"tradesim/internal/paper"
	redisstore "tradesim/internal/store/redis"
	sqlitestore "tradesim/internal/store/sqlite"
)

const historyWindow = 2000

func main() {
	cfg := config.Load()
	logger.Init("papertrader", logger.ParseLevel(cfg.LogLevel))

	riskCfg, err := config.LoadRisk(cfg.RiskConfigPath)
	if err != nil {
		log.Fatalf("[papertrader] risk config: %v", err)
	}
	log.Printf("[papertrader] symbols=%v interval=%s risk=%+v", cfg.Symbols, cfg.Interval, riskCfg)

	m := metrics.New()

	candleStore, err := sqlitestore.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[papertrader] sqlite open failed: %v", err)
	}
	defer candleStore.Close()

	// Redis is optional; without an address the API falls back to the
	// in-memory history window for mark prices.
	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		cache, err = redisstore.New(redisstore.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[papertrader] redis unavailable, continuing without cache: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[papertrader] shutdown signal received")
		cancel()
	}()

	hist := history.NewBuffer(historyWindow)
	orderStore := paper.NewStore()

	server := api.NewServer(api.ServerConfig{
		Store:   orderStore,
		Risk:    riskCfg,
		History: hist,
		Cache:   cache,
		Candles: candleStore,
		Metrics: m,
		Equity:  cfg.InitialEquity,
	})

	// Market data feed
	feed := ws.New(ws.Config{
		URL:      cfg.BinanceWSURL,
		Symbols:  cfg.Symbols,
		Interval: cfg.Interval,
	})
	feed.OnReconnect = m.FeedReconnects.Inc
	feed.OnDrop = m.FeedDropped.Inc

	// Every closed candle fans out to the history window, the candle
	// database, the Redis cache, and connected stream clients. Each sink
	// consumes at its own pace; a stalled sink drops rather than blocks.
	fanout := bus.New(1024)
	fanout.OnDrop = func(int) { m.FeedDropped.Inc() }

	histCh := fanout.Subscribe()
	dbCh := fanout.Subscribe()
	cacheCh := fanout.Subscribe()
	streamCh := fanout.Subscribe()

	go func() {
		for candle := range histCh {
			m.FeedCandles.Inc()
			hist.Append(candle)
		}
	}()
	go func() {
		for candle := range dbCh {
			start := time.Now()
			if err := candleStore.WriteCandle(candle); err != nil {
				log.Printf("[papertrader] %v", err)
				continue
			}
			m.SQLiteCommitDur.Observe(time.Since(start).Seconds())
		}
	}()
	go func() {
		for candle := range cacheCh {
			if cache == nil {
				continue
			}
			start := time.Now()
			if err := cache.SetLatest(ctx, candle); err != nil {
				log.Printf("[papertrader] %v", err)
				continue
			}
			m.RedisWriteDur.Observe(time.Since(start).Seconds())
		}
	}()
	go func() {
		for candle := range streamCh {
			server.BroadcastCandle(candle)
		}
	}()

	candleCh := make(chan model.Candle, 1024)
	go fanout.Run(ctx, candleCh)
	go func() {
		if err := feed.Run(ctx, candleCh); err != nil && ctx.Err() == nil {
			log.Printf("[papertrader] feed stopped: %v", err)
		}
		close(candleCh)
	}()

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		log.Printf("[papertrader] metrics on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Printf("[papertrader] metrics server: %v", err)
		}
	}()

	// API server
	apiServer := &http.Server{Addr: cfg.APIAddr, Handler: server.Router()}
	go func() {
		<-ctx.Done()
		apiServer.Close()
	}()

	log.Printf("[papertrader] api on %s", cfg.APIAddr)
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[papertrader] api server: %v", err)
	}
}
