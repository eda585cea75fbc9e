// Package backtest replays a candle series through a strategy and produces a
// trade ledger and equity curve.
//
// The engine is a pure state machine: one pass, one candle at a time, a single
// open long-only position, and an equity identity that holds at every
// step (equity + position*close == marked account value). No pyramiding, no
// partial fills, no shorting. Given identical inputs the output is identical
// bit for bit.
package backtest

import (
	"fmt"

	"tradesim/internal/model"
	"tradesim/internal/strategy"
)

// Options configures a single backtest run.
// Fee and slippage are in basis points and default to 0.
type Options struct {
	InitialEquity float64 `json:"initial_equity"`
	FeeBps        float64 `json:"fee_bps"`
	SlippageBps   float64 `json:"slippage_bps"`
}

// Run replays candles through strat and returns the resulting ledger.
//
// Per candle: the strategy sees a fresh read-only context and emits a signal.
// A buy is actionable only while flat; it fills at close*(1+slip) and deploys
// the full fee-adjusted equity. A sell is actionable only while long; it fills
// at close*(1-slip), realizes pnl against the entry fill, and returns the
// fee-adjusted proceeds to equity. Everything else is a no-op. The equity
// curve is marked to market on every step regardless of signal.
//
// A position still open after the last candle is force-closed on that candle
// with the same sell formula, and the final curve point is overwritten with
// the post-liquidation equity.
//
// All state is scoped to this call. A panicking strategy aborts the run with
// a non-nil error; the ledger accumulated before the failure point is built
// incrementally and is returned alongside it for inspection.
func Run(candles []model.Candle, strat strategy.Strategy, opts Options) (res Result, err error) {
	fee := opts.FeeBps / 10000
	slip := opts.SlippageBps / 10000

	res = Result{
		Strategy:    strat.Name(),
		Trades:      []Trade{},
		EquityCurve: make([]EquityPoint, 0, len(candles)),
	}

	defer func() {
		if r := recover(); r != nil {
			if n := len(res.EquityCurve); n > 0 {
				res.FinalEquity = res.EquityCurve[n-1].Equity
			}
			res.finalize()
			err = fmt.Errorf("strategy %s failed: %v", res.Strategy, r)
		}
	}()

	equity := opts.InitialEquity
	position := 0.0
	entryPrice := 0.0
	entryTS := int64(0)

	strat.Init(candles)

	for i, c := range candles {
		ctx := strategy.Context{
			Index:    i,
			Candle:   c,
			Position: position,
			Equity:   equity,
		}

		switch strat.OnCandle(ctx, candles) {
		case strategy.SignalBuy:
			if position == 0 {
				fill := c.Close * (1 + slip)
				qty := equity * (1 - fee) / fill
				if qty > 0 {
					position = qty
					entryPrice = fill
					entryTS = c.TS
					equity = 0
				}
			}
		case strategy.SignalSell:
			if position > 0 {
				fill := c.Close * (1 - slip)
				res.Trades = append(res.Trades, Trade{
					EntryTS: entryTS,
					Entry:   entryPrice,
					ExitTS:  c.TS,
					Exit:    fill,
					Qty:     position,
					PnL:     (fill - entryPrice) * position,
				})
				equity += position * fill * (1 - fee)
				position = 0
			}
		default:
			// hold, or anything out of range
		}

		res.EquityCurve = append(res.EquityCurve, EquityPoint{
			TS:     c.TS,
			Equity: equity + position*c.Close,
		})
	}

	// Liquidate an open position at the series end so the ledger is complete.
	if position > 0 && len(candles) > 0 {
		last := candles[len(candles)-1]
		fill := last.Close * (1 - slip)
		res.Trades = append(res.Trades, Trade{
			EntryTS: entryTS,
			Entry:   entryPrice,
			ExitTS:  last.TS,
			Exit:    fill,
			Qty:     position,
			PnL:     (fill - entryPrice) * position,
		})
		equity += position * fill * (1 - fee)
		position = 0
		res.EquityCurve[len(res.EquityCurve)-1] = EquityPoint{TS: last.TS, Equity: equity}
	}

	res.FinalEquity = equity
	res.finalize()
	return res, nil
}
