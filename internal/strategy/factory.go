package strategy

import (
	"fmt"
)

// Spec is a declarative strategy selection, as supplied by the CLI or the
// backtest API. Zero-valued parameters take the usual defaults.
type Spec struct {
	Name       string  `json:"name" yaml:"name"`
	Fast       int     `json:"fast,omitempty" yaml:"fast"`
	Slow       int     `json:"slow,omitempty" yaml:"slow"`
	Period     int     `json:"period,omitempty" yaml:"period"`
	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold"`
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought"`
}

// FromSpec builds a strategy from a spec. Unknown names are an error.
func FromSpec(spec Spec) (Strategy, error) {
	switch spec.Name {
	case "sma_cross", "":
		fast, slow := spec.Fast, spec.Slow
		if fast == 0 {
			fast = 9
		}
		if slow == 0 {
			slow = 21
		}
		if fast >= slow {
			return nil, fmt.Errorf("sma_cross: fast period %d must be below slow %d", fast, slow)
		}
		return NewSMACrossover(fast, slow), nil

	case "rsi_rev":
		period := spec.Period
		if period == 0 {
			period = 14
		}
		oversold, overbought := spec.Oversold, spec.Overbought
		if oversold == 0 {
			oversold = 30
		}
		if overbought == 0 {
			overbought = 70
		}
		if oversold >= overbought {
			return nil, fmt.Errorf("rsi_rev: oversold %v must be below overbought %v", oversold, overbought)
		}
		return NewRSIReversion(period, oversold, overbought), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q", spec.Name)
	}
}
