// Package risk provides the stateless pre-trade admission gate.
//
// The gate validates one order intent against a configuration. It keeps no
// history and issues no I/O, so the same config and intent always produce the
// same result, on the paper path and any live path alike.
package risk

import "tradesim/internal/model"

// Reason identifies why an intent was rejected.
type Reason string

const (
	ReasonMaxNotionalExceeded Reason = "max_notional_exceeded"
	ReasonSymbolNotAllowed    Reason = "symbol_not_allowed"
)

// Config holds the risk limits. Nil/empty fields mean "no constraint".
type Config struct {
	MaxNotional    *float64 `yaml:"max_notional" json:"max_notional,omitempty"`
	AllowedSymbols []string `yaml:"allowed_symbols" json:"allowed_symbols,omitempty"`
}

// Intent is an order about to be submitted.
type Intent struct {
	Symbol string     `json:"symbol"`
	Side   model.Side `json:"side"`
	Qty    float64    `json:"qty"`
	Price  float64    `json:"price"`
}

// Result is the gate's verdict: admitted, or rejected with a reason.
// It is a value, never an error.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

func allow() Result          { return Result{Allowed: true} }
func reject(r Reason) Result { return Result{Reason: r} }

// PreTradeCheck validates an intent against cfg.
//
// Checks run in a fixed order: notional (qty*price strictly above MaxNotional
// rejects) before the symbol allow-list. A zero-quantity or zero-price intent
// has zero notional and passes the notional check. The side does not affect
// the outcome.
func PreTradeCheck(cfg Config, intent Intent) Result {
	if cfg.MaxNotional != nil && intent.Qty*intent.Price > *cfg.MaxNotional {
		return reject(ReasonMaxNotionalExceeded)
	}
	if len(cfg.AllowedSymbols) > 0 && !contains(cfg.AllowedSymbols, intent.Symbol) {
		return reject(ReasonSymbolNotAllowed)
	}
	return allow()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
