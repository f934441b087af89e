// Package config loads server configuration from environment variables
// through small envOrDefault helpers rather than pulling in a
// configuration framework for a handful of values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Port     string // PORT (default "8000")
	LogLevel string // LOG_LEVEL (default "INFO")

	ShortPollInterval time.Duration // SHORT_POLL_INTERVAL_MS (default 2000ms)
	LongPollTimeout   time.Duration // LONG_POLL_TIMEOUT_S (default 30s)
	SSEHeartbeat      time.Duration // SSE_HEARTBEAT_INTERVAL_S (default 15s)
	WSHeartbeat       time.Duration // WS_HEARTBEAT_INTERVAL_S (default 30s)
	WSPongTimeout     time.Duration // WS_PONG_TIMEOUT_S (default 5s)
}

// Load reads Config from the environment, applying spec defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:     envOrDefault("PORT", "8000"),
		LogLevel: envOrDefault("LOG_LEVEL", "INFO"),
	}

	shortPollMs, err := envOrDefaultInt("SHORT_POLL_INTERVAL_MS", 2000)
	if err != nil {
		return nil, err
	}
	c.ShortPollInterval = time.Duration(shortPollMs) * time.Millisecond

	longPollS, err := envOrDefaultInt("LONG_POLL_TIMEOUT_S", 30)
	if err != nil {
		return nil, err
	}
	c.LongPollTimeout = time.Duration(longPollS) * time.Second

	sseHeartbeatS, err := envOrDefaultInt("SSE_HEARTBEAT_INTERVAL_S", 15)
	if err != nil {
		return nil, err
	}
	c.SSEHeartbeat = time.Duration(sseHeartbeatS) * time.Second

	wsHeartbeatS, err := envOrDefaultInt("WS_HEARTBEAT_INTERVAL_S", 30)
	if err != nil {
		return nil, err
	}
	c.WSHeartbeat = time.Duration(wsHeartbeatS) * time.Second

	wsPongS, err := envOrDefaultInt("WS_PONG_TIMEOUT_S", 5)
	if err != nil {
		return nil, err
	}
	c.WSPongTimeout = time.Duration(wsPongS) * time.Second

	return c, nil
}

// Addr returns the listen address derived from Port, e.g. ":8000".
func (c *Config) Addr() string {
	return ":" + c.Port
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
