// Package history keeps a bounded in-memory rolling window of recent candles
// per symbol. The feed appends, the HTTP API and live backtests read.
package history

import (
	"sync"

	"tradesim/internal/model"
)

// Buffer is a per-symbol rolling candle window with a fixed maximum length.
// Safe for one writer and many readers.
type Buffer struct {
	mu      sync.RWMutex
	max     int
	candles map[string][]model.Candle
}

// NewBuffer creates a Buffer keeping at most max candles per symbol.
func NewBuffer(max int) *Buffer {
	if max < 1 {
		max = 1
	}
	return &Buffer{
		max:     max,
		candles: make(map[string][]model.Candle),
	}
}

// Append adds a candle to its symbol's window, evicting the oldest entry
// once the window is full.
func (b *Buffer) Append(c model.Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := append(b.candles[c.Symbol], c)
	if len(w) > b.max {
		w = w[len(w)-b.max:]
	}
	b.candles[c.Symbol] = w
}

// Candles returns a copy of the current window for symbol, oldest first.
func (b *Buffer) Candles(symbol string) []model.Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	w := b.candles[symbol]
	out := make([]model.Candle, len(w))
	copy(out, w)
	return out
}

// Last returns the most recent candle for symbol, if any.
func (b *Buffer) Last(symbol string) (model.Candle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	w := b.candles[symbol]
	if len(w) == 0 {
		return model.Candle{}, false
	}
	return w[len(w)-1], true
}

// Len returns the current window length for symbol.
func (b *Buffer) Len(symbol string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.candles[symbol])
}
