// Package ws streams live candles from the Binance combined kline stream
// and pushes them into a channel as normalized model.Candle values.
//
// Only closed klines are emitted; forming buckets never reach the core.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tradesim/internal/model"
)

// Config holds configuration for the kline feed.
type Config struct {
	URL      string // combined-stream base, e.g. wss://stream.binance.com:9443/stream
	Symbols  []string
	Interval string // kline interval, e.g. "1m"
}

// Feed connects to the Binance WebSocket and ingests kline events.
type Feed struct {
	cfg Config

	// Optional metrics hooks
	OnReconnect func()
	OnDrop      func()
}

// New creates a new Feed.
func New(cfg Config) *Feed {
	return &Feed{cfg: cfg}
}

// streamURL builds the combined-stream URL:
// <base>?streams=btcusdt@kline_1m/ethusdt@kline_1m
func (f *Feed) streamURL() string {
	streams := make([]string, len(f.cfg.Symbols))
	for i, s := range f.cfg.Symbols {
		streams[i] = strings.ToLower(s) + "@kline_" + f.cfg.Interval
	}
	return f.cfg.URL + "?streams=" + strings.Join(streams, "/")
}

// Run connects and streams closed candles into candleCh until ctx is
// cancelled. Connection failures trigger reconnects with capped exponential
// backoff; the caller owns the channel and it is never closed here.
func (f *Feed) Run(ctx context.Context, candleCh chan<- model.Candle) error {
	url := f.streamURL()
	backoff := time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := f.stream(ctx, url, candleCh)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[ws] stream ended: %v, reconnecting in %s", err, backoff)
		if f.OnReconnect != nil {
			f.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

// stream runs one connection until it fails or ctx is cancelled.
func (f *Feed) stream(ctx context.Context, url string, candleCh chan<- model.Candle) error {
	log.Printf("[ws] connecting to %s", url)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	defer conn.Close()
	log.Printf("[ws] connected, %d streams", len(f.cfg.Symbols))

	// Unblock ReadMessage on cancellation. The watcher must not outlive
	// this connection or reconnect cycles accumulate one goroutine each.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read: %w", err)
		}

		candle, closed, err := parseKline(raw)
		if err != nil {
			log.Printf("[ws] parse error: %v", err)
			continue
		}
		if !closed {
			continue
		}

		select {
		case candleCh <- candle:
		default:
			log.Println("[ws] candle channel full, dropping")
			if f.OnDrop != nil {
				f.OnDrop()
			}
		}
	}
}

// Binance combined-stream kline payload.
type klineEvent struct {
	Stream string `json:"stream"`
	Data   struct {
		Event string `json:"e"`
		Kline struct {
			OpenTime int64  `json:"t"` // ms
			Symbol   string `json:"s"`
			Open     string `json:"o"`
			High     string `json:"h"`
			Low      string `json:"l"`
			Close    string `json:"c"`
			Volume   string `json:"v"`
			Closed   bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

// parseKline decodes a raw message into a candle. closed reports whether the
// kline bucket is final; non-kline events return closed=false with no error.
func parseKline(raw []byte) (model.Candle, bool, error) {
	var ev klineEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return model.Candle{}, false, fmt.Errorf("decode kline: %w", err)
	}
	if ev.Data.Event != "kline" {
		return model.Candle{}, false, nil
	}

	k := ev.Data.Kline
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	closePx, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}

	return model.Candle{
		Symbol: k.Symbol,
		TS:     k.OpenTime / 1000,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: volume,
	}, k.Closed, nil
}
