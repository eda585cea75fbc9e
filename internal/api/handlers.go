package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"encoding/json"

	"tradesim/internal/backtest"
	"tradesim/internal/model"
	"tradesim/internal/paper"
	"tradesim/internal/risk"
	"tradesim/internal/strategy"
)

// orderRequest is the POST /api/v1/orders body.
type orderRequest struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
}

// orderResponse reports the gate verdict and, when admitted, the stored order.
type orderResponse struct {
	Accepted bool         `json:"accepted"`
	Reason   risk.Reason  `json:"reason,omitempty"`
	Order    *model.Order `json:"order,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Orders(r.URL.Query().Get("symbol")))
	case http.MethodPost:
		s.placeOrder(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	side, err := model.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Qty <= 0 || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "qty and price must be positive")
		return
	}

	verdict := risk.PreTradeCheck(s.riskCfg, risk.Intent{
		Symbol: req.Symbol,
		Side:   side,
		Qty:    req.Qty,
		Price:  req.Price,
	})
	if !verdict.Allowed {
		log.Printf("[api] order rejected: %s %s qty=%v price=%v reason=%s",
			side, req.Symbol, req.Qty, req.Price, verdict.Reason)
		if s.metrics != nil {
			s.metrics.OrdersRejected.WithLabelValues(string(verdict.Reason)).Inc()
		}
		writeJSON(w, http.StatusUnprocessableEntity, orderResponse{Reason: verdict.Reason})
		return
	}

	order := s.store.Place(req.Symbol, side, req.Qty, req.Price)
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	log.Printf("[api] order placed: %s %s qty=%v price=%v notional=%.2f id=%s",
		order.Side, order.Symbol, order.Qty, order.Price, order.Notional(), order.ID)
	writeJSON(w, http.StatusCreated, orderResponse{Accepted: true, Order: &order})
}

// positionView is a Position plus mark-price context when available.
type positionView struct {
	model.Position
	Mark          float64 `json:"mark,omitempty"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol != "" {
		writeJSON(w, http.StatusOK, s.positionView(r, symbol))
		return
	}

	seen := map[string]bool{}
	views := []positionView{}
	for _, o := range s.store.Orders("") {
		if !seen[o.Symbol] {
			seen[o.Symbol] = true
			views = append(views, s.positionView(r, o.Symbol))
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) positionView(r *http.Request, symbol string) positionView {
	pos := paper.ComputePosition(symbol, s.store.Orders(symbol))
	view := positionView{Position: pos}
	if mark, ok := s.markPrice(r, symbol); ok {
		view.Mark = mark
		view.UnrealizedPnL = pos.UnrealizedPnL(mark)
	}
	return view
}

// markPrice resolves the latest close for a symbol: in-memory history first,
// then the Redis cache.
func (s *Server) markPrice(r *http.Request, symbol string) (float64, bool) {
	if s.history != nil {
		if last, ok := s.history.Last(symbol); ok {
			return last.Close, true
		}
	}
	if s.cache != nil {
		if candle, ok, err := s.cache.Latest(r.Context(), symbol); err == nil && ok {
			return candle.Close, true
		}
	}
	return 0, false
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var candles []model.Candle
	if s.history != nil {
		candles = s.history.Candles(symbol)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(candles) {
		candles = candles[len(candles)-limit:]
	}
	writeJSON(w, http.StatusOK, candles)
}

// backtestRequest is the POST /api/v1/backtest body. Candles come from the
// SQLite store when configured, otherwise from the in-memory history window.
type backtestRequest struct {
	Symbol   string           `json:"symbol"`
	FromTS   int64            `json:"from_ts"`
	Strategy strategy.Spec    `json:"strategy"`
	Options  backtest.Options `json:"options"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if req.Options.InitialEquity <= 0 {
		req.Options.InitialEquity = s.equity
	}
	if req.Options.InitialEquity <= 0 {
		writeError(w, http.StatusBadRequest, "options.initial_equity must be positive")
		return
	}

	strat, err := strategy.FromSpec(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	candles, err := s.loadCandles(req.Symbol, req.FromTS)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(candles) == 0 {
		writeError(w, http.StatusNotFound, "no candles for symbol")
		return
	}

	start := time.Now()
	result, err := backtest.Run(candles, strat, req.Options)
	if err != nil {
		log.Printf("[api] backtest aborted: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.BacktestRuns.Inc()
		s.metrics.BacktestDur.Observe(time.Since(start).Seconds())
	}
	log.Printf("[api] backtest %s on %s: %d candles, %d trades, pnl=%.2f",
		strat.Name(), req.Symbol, len(candles), len(result.Trades), result.TotalPnL)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) loadCandles(symbol string, fromTS int64) ([]model.Candle, error) {
	if s.candles != nil {
		return s.candles.ReadCandles(symbol, fromTS)
	}
	if s.history != nil {
		return s.history.Candles(symbol), nil
	}
	return nil, nil
}
