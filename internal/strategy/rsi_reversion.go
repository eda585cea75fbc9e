package strategy

import (
	"fmt"
	"math"

	"tradesim/internal/indicator"
	"tradesim/internal/model"
)

// RSIReversion is a mean-reversion strategy on RSI levels.
//
// Buy when RSI drops below the oversold threshold, sell when it rises above
// the overbought threshold. The RSI series is precomputed in Init.
type RSIReversion struct {
	period     int
	oversold   float64
	overbought float64

	rsi []float64
}

// NewRSIReversion creates an RSI reversion strategy with the given period
// and thresholds (typically 14, 30, 70).
func NewRSIReversion(period int, oversold, overbought float64) *RSIReversion {
	return &RSIReversion{period: period, oversold: oversold, overbought: overbought}
}

func (r *RSIReversion) Name() string {
	return fmt.Sprintf("rsi_rev_%d", r.period)
}

// Init precomputes the RSI series.
func (r *RSIReversion) Init(candles []model.Candle) {
	r.rsi = indicator.RSI(model.Closes(candles), r.period)
}

func (r *RSIReversion) OnCandle(ctx Context, candles []model.Candle) Signal {
	i := ctx.Index
	if i >= len(r.rsi) || math.IsNaN(r.rsi[i]) {
		return SignalHold
	}

	switch {
	case r.rsi[i] < r.oversold:
		return SignalBuy
	case r.rsi[i] > r.overbought:
		return SignalSell
	default:
		return SignalHold
	}
}
