// Package redis caches the latest candle per symbol so the HTTP API can
// serve mark prices without touching the feed path.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"tradesim/internal/model"
)

const (
	latestKeyPrefix = "tradesim:latest:"
	latestTTL       = 30 * time.Minute
)

// CacheConfig configures the Redis cache connection.
type CacheConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache holds the Redis client.
type Cache struct {
	client *goredis.Client
}

// New creates a Cache and pings the server.
func New(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client}, nil
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// SetLatest writes the latest candle for its symbol with a TTL.
func (c *Cache) SetLatest(ctx context.Context, candle model.Candle) error {
	if err := c.client.Set(ctx, latestKeyPrefix+candle.Symbol, candle.JSON(), latestTTL).Err(); err != nil {
		return fmt.Errorf("redis set latest %s: %w", candle.Symbol, err)
	}
	return nil
}

// Latest reads the cached latest candle for symbol.
// Returns ok=false when nothing is cached.
func (c *Cache) Latest(ctx context.Context, symbol string) (model.Candle, bool, error) {
	data, err := c.client.Get(ctx, latestKeyPrefix+symbol).Bytes()
	if err == goredis.Nil {
		return model.Candle{}, false, nil
	}
	if err != nil {
		return model.Candle{}, false, fmt.Errorf("redis get latest %s: %w", symbol, err)
	}

	var candle model.Candle
	if err := json.Unmarshal(data, &candle); err != nil {
		return model.Candle{}, false, fmt.Errorf("redis decode latest %s: %w", symbol, err)
	}
	return candle, true, nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
