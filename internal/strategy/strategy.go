// Package strategy defines the strategy contract consumed by the backtest
// engine, plus the built-in strategies.
//
// A Strategy sees one candle at a time in ascending order and emits a Signal.
// Strategies must be deterministic given the same candle sequence; any
// internal state (precomputed indicator arrays, last-signal memory) is the
// strategy's own responsibility.
package strategy

import (
	"strings"

	"tradesim/internal/model"
)

// Signal is a strategy's per-candle decision.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// ParseSignal maps a raw signal string to a Signal. The mapping is total:
// anything that is not exactly buy or sell (case-insensitive) is hold, so
// malformed strategy output degrades to inaction instead of failing a run.
func ParseSignal(raw string) Signal {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy":
		return SignalBuy
	case "sell":
		return SignalSell
	default:
		return SignalHold
	}
}

// Context is the read-only per-step view handed to OnCandle.
type Context struct {
	Index    int          // position in the candle sequence
	Candle   model.Candle // current candle
	Position float64      // held base-asset quantity, >= 0
	Equity   float64      // uninvested quote-currency balance
}

// Strategy is the interface all trading strategies implement.
type Strategy interface {
	// Name returns the strategy's identifier, e.g. "sma_cross_9_21".
	Name() string

	// Init is called exactly once before replay with the full candle series,
	// for precomputation such as indicator warm-up. Strategies with nothing
	// to precompute embed NopInit.
	Init(candles []model.Candle)

	// OnCandle is called once per candle in ascending order and returns the
	// strategy's decision for that step.
	OnCandle(ctx Context, candles []model.Candle) Signal
}

// NopInit provides a no-op Init for strategies without precomputation.
type NopInit struct{}

// Init implements Strategy.
func (NopInit) Init([]model.Candle) {}
