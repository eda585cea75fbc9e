package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradesim/internal/risk"
	"tradesim/internal/strategy"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Market data
	BinanceWSURL string // combined-stream endpoint
	Symbols      []string
	Interval     string // kline interval, e.g. "1m"

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	APIAddr       string
	MetricsAddr   string

	// Logging
	LogLevel string

	// Paper trading
	RiskConfigPath string
	InitialEquity  float64
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BinanceWSURL: getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/stream"),
		Symbols:      splitList(getEnv("SYMBOLS", "BTCUSDT")),
		Interval:     getEnv("KLINE_INTERVAL", "1m"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/candles.db"),
		APIAddr:       getEnv("API_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		RiskConfigPath: getEnv("RISK_CONFIG", "risk.yaml"),
		InitialEquity:  getEnvFloat("INITIAL_EQUITY", 10000),
	}
}

// LoadRisk reads the risk limits from a YAML file. A missing file is not an
// error: it means "no constraints", matching the gate's empty-config behavior.
func LoadRisk(path string) (risk.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return risk.Config{}, nil
		}
		return risk.Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg risk.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return risk.Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadStrategy reads a strategy spec from a YAML file. Unlike the risk file,
// a missing strategy file is an error: the caller asked for it by name.
func LoadStrategy(path string) (strategy.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return strategy.Spec{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var spec strategy.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return strategy.Spec{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return spec, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
