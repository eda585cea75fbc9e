package model

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes a side string. Anything other than buy/sell is an error;
// unlike signals, an order with an unknown direction cannot be defaulted.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid order side %q", s)
	}
}

// Order represents a single admitted paper order.
// Orders are immutable after creation; the store holds them append-only.
type Order struct {
	ID     string    `json:"id"`
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Qty    float64   `json:"qty"`
	Price  float64   `json:"price"`
	TS     time.Time `json:"ts"`
}

// Notional returns the order's quote-currency value.
func (o *Order) Notional() float64 {
	return o.Qty * o.Price
}
