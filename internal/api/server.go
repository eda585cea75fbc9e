// Package api provides the HTTP JSON surface over the paper-trading core:
// order submission through the risk gate, position views, candle history,
// on-demand backtests, and a live candle WebSocket stream.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tradesim/internal/history"
	"tradesim/internal/logger"
	"tradesim/internal/metrics"
	"tradesim/internal/paper"
	"tradesim/internal/risk"
	redisstore "tradesim/internal/store/redis"
	sqlitestore "tradesim/internal/store/sqlite"
)

// ServerConfig wires the server's collaborators. Cache, Candles, and Metrics
// are optional; nil disables the corresponding feature.
type ServerConfig struct {
	Store   *paper.Store
	Risk    risk.Config
	History *history.Buffer
	Cache   *redisstore.Cache
	Candles *sqlitestore.Store
	Metrics *metrics.Metrics

	// Equity is the default backtest starting equity when a request
	// leaves options.initial_equity unset.
	Equity float64
}

// Server handles HTTP requests for the paper trader.
type Server struct {
	store   *paper.Store
	riskCfg risk.Config
	history *history.Buffer
	cache   *redisstore.Cache
	candles *sqlitestore.Store
	metrics *metrics.Metrics
	equity  float64
	hub     *hub
}

// NewServer creates a Server from its collaborators.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		store:   cfg.Store,
		riskCfg: cfg.Risk,
		history: cfg.History,
		cache:   cfg.Cache,
		candles: cfg.Candles,
		metrics: cfg.Metrics,
		equity:  cfg.Equity,
		hub:     newHub(),
	}
}

// Router sets up the HTTP routes with request-ID logging.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/orders", s.handleOrders)
	mux.HandleFunc("/api/v1/positions", s.handlePositions)
	mux.HandleFunc("/api/v1/candles", s.handleCandles)
	mux.HandleFunc("/api/v1/backtest", s.handleBacktest)
	mux.HandleFunc("/ws", s.handleStream)

	return requestLog(mux)
}

// requestLog tags every request with an ID and logs it on completion.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context(), uuid.NewString())
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		attrs := append(logger.WithRequest(ctx),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)),
		)
		slog.Debug("request served", attrs...)
	})
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	resp := map[string]any{
		"status": "ok",
		"orders": s.store.Len(),
	}
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.cache.Client().Ping(ctx).Err(); err != nil {
			resp["redis"] = "down"
		} else {
			resp["redis"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
