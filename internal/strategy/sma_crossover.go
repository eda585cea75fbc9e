package strategy

import (
	"fmt"
	"math"

	"tradesim/internal/indicator"
	"tradesim/internal/model"
)

// SMACrossover is a classic moving-average crossover strategy.
//
// Buy when the fast SMA crosses above the slow SMA (golden cross),
// sell when it crosses below (death cross). Both averages are precomputed
// over the full series in Init, so OnCandle is an O(1) array lookup.
type SMACrossover struct {
	fast int
	slow int

	fastSMA []float64
	slowSMA []float64
}

// NewSMACrossover creates an SMA crossover strategy.
// fast must be shorter than slow (e.g. 9 and 21).
func NewSMACrossover(fast, slow int) *SMACrossover {
	return &SMACrossover{fast: fast, slow: slow}
}

func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_cross_%d_%d", s.fast, s.slow)
}

// Init precomputes both SMA series.
func (s *SMACrossover) Init(candles []model.Candle) {
	closes := model.Closes(candles)
	s.fastSMA = indicator.SMA(closes, s.fast)
	s.slowSMA = indicator.SMA(closes, s.slow)
}

func (s *SMACrossover) OnCandle(ctx Context, candles []model.Candle) Signal {
	i := ctx.Index
	if i == 0 || i >= len(s.fastSMA) {
		return SignalHold
	}

	prevFast, prevSlow := s.fastSMA[i-1], s.slowSMA[i-1]
	curFast, curSlow := s.fastSMA[i], s.slowSMA[i]
	if math.IsNaN(prevFast) || math.IsNaN(prevSlow) || math.IsNaN(curFast) || math.IsNaN(curSlow) {
		return SignalHold
	}

	if prevFast <= prevSlow && curFast > curSlow {
		return SignalBuy
	}
	if prevFast >= prevSlow && curFast < curSlow {
		return SignalSell
	}
	return SignalHold
}
