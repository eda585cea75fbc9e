package indicator

import "math"

// SMA computes the simple moving average with the given period.
// Output[i] is NaN for i < period-1 (insufficient window); otherwise it is the
// arithmetic mean of series[i-period+1 .. i]. A period longer than the series
// yields an all-NaN slice; an empty series yields an empty slice.
// Runs in O(n) via a rolling sum.
func SMA(series []float64, period int) []float64 {
	if period < 1 {
		return nanSlice(len(series))
	}

	out := make([]float64, len(series))
	var sum float64
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
