package model

import (
	"encoding/json"
	"time"
)

// Candle represents one OHLCV bar for a single symbol.
// Candles are immutable once produced and ordered ascending by TS.
// The core does not enforce gap-free series; that is the feed's job.
type Candle struct {
	Symbol string  `json:"symbol"`
	TS     int64   `json:"ts"` // bucket open time, unix seconds (UTC)
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Time returns the candle open time in UTC.
func (c *Candle) Time() time.Time {
	return time.Unix(c.TS, 0).UTC()
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Closes extracts the close-price series from a candle slice, in order.
// This is the usual indicator input.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}
