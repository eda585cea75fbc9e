// Package indicator provides technical indicator calculations over price series.
//
// All functions are pure: they take an ordered []float64 series and return a
// slice of exactly the same length. Entries that fall inside an indicator's
// warm-up window are math.NaN(), with one deliberate exception: EMA has no
// warm-up and is defined from the first element (seeded with series[0]).
// Callers must not assume the warm-up rule is uniform across indicators.
package indicator

import "math"

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
