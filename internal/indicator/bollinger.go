package indicator

import "math"

// Bands holds the three Bollinger Band series. All slices have the same
// length as the input series.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// BollingerBands computes Bollinger Bands with the given period and width k.
// Middle is SMA(series, period); Upper and Lower are middle +/- k standard
// deviations over the same trailing window (population stddev). All three
// values are NaN for i < period-1. Whenever the window is not perfectly flat,
// Upper > Middle > Lower.
func BollingerBands(series []float64, period int, k float64) Bands {
	middle := SMA(series, period)
	upper := nanSlice(len(series))
	lower := nanSlice(len(series))

	if period < 1 {
		return Bands{Middle: middle, Upper: upper, Lower: lower}
	}

	for i := period - 1; i < len(series); i++ {
		mean := middle[i]
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := series[j] - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mean + k*sd
		lower[i] = mean - k*sd
	}

	return Bands{Middle: middle, Upper: upper, Lower: lower}
}
