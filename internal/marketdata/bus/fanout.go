package bus

import (
	"context"
	"log"
	"sync"

	"tradesim/internal/model"
)

// FanOut broadcasts candles from a single input channel to every subscriber.
// A full subscriber channel drops the candle for that subscriber only, so a
// slow sink (a stalled database write, for example) never blocks the feed.
type FanOut struct {
	mu      sync.RWMutex
	subs    []chan model.Candle
	bufSize int

	// OnDrop is called with the subscriber index when its channel is full.
	OnDrop func(sub int)
}

func New(bufSize int) *FanOut {
	return &FanOut{bufSize: bufSize}
}

// Subscribe registers a new output channel. All subscriptions must happen
// before Run starts consuming.
func (f *FanOut) Subscribe() <-chan model.Candle {
	ch := make(chan model.Candle, f.bufSize)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch
}

// Run consumes the input channel until it closes or ctx is cancelled, then
// closes every subscriber channel.
func (f *FanOut) Run(ctx context.Context, input <-chan model.Candle) {
	defer func() {
		f.mu.RLock()
		for _, ch := range f.subs {
			close(ch)
		}
		f.mu.RUnlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case candle, ok := <-input:
			if !ok {
				return
			}
			f.mu.RLock()
			for i, ch := range f.subs {
				select {
				case ch <- candle:
				default:
					if f.OnDrop != nil {
						f.OnDrop(i)
					} else {
						log.Printf("[bus] subscriber %d full, dropping %s@%d", i, candle.Symbol, candle.TS)
					}
				}
			}
			f.mu.RUnlock()
		}
	}
}
