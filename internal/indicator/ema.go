package indicator

// EMA computes the exponential moving average with smoothing factor
// k = 2/(period+1).
//
// Unlike SMA, EMA has no NaN warm-up: ema[0] = series[0], and every later
// value is series[i]*k + ema[i-1]*(1-k). Early values are therefore biased
// toward the seed rather than undefined. This asymmetry with SMA/Bollinger
// is intentional and part of the contract.
func EMA(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}

	k := 2.0 / float64(period+1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i]*k + out[i-1]*(1-k)
	}
	return out
}
