package indicator

import "math"

// RSI computes the Relative Strength Index over the given period using a
// simple trailing-window average of gains and losses (not Wilder's smoothed
// average; see the package RSI note below).
//
// Output[i] is NaN for i < period. For i >= period, the average gain and
// average loss are taken over the last `period` price deltas: a positive
// delta contributes to gains, a non-positive delta contributes its magnitude
// to losses. RSI is 100 when the average loss is 0 and there were gains,
// 0 when the average gain is 0, and 100 - 100/(1+avgGain/avgLoss) otherwise.
// Defined values always fall in [0, 100].
//
// Wilder's recursive smoothing is a well-known alternative seeding; it
// converges to similar values but diverges on short windows, so switching
// would change results for existing callers.
func RSI(series []float64, period int) []float64 {
	if period < 1 {
		return nanSlice(len(series))
	}

	out := make([]float64, len(series))
	var gainSum, lossSum float64
	for i := range series {
		if i == 0 {
			out[0] = math.NaN()
			continue
		}

		delta := series[i] - series[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
		// Drop the delta that just left the trailing window.
		if i > period {
			old := series[i-period] - series[i-period-1]
			if old > 0 {
				gainSum -= old
			} else {
				lossSum += old
			}
		}

		// Rolling float subtraction can leave sums a hair below zero.
		if gainSum < 0 {
			gainSum = 0
		}
		if lossSum < 0 {
			lossSum = 0
		}

		if i < period {
			out[i] = math.NaN()
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain > 0:
			out[i] = 100
		case avgGain == 0:
			out[i] = 0
		default:
			out[i] = 100 - 100/(1+avgGain/avgLoss)
		}
	}
	return out
}
