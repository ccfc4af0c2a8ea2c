// Package config loads runtime settings from the environment, falling back
// to safe defaults when a variable is unset or unparseable.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	// Hub timing knobs.
	GracePeriod        time.Duration
	ReapInterval       time.Duration
	PendingCallTimeout time.Duration

	// Per-connection transport limits.
	SendBufferSize int
	MaxMessageSize int64
	RateBurst      int
	RateRefill     time.Duration
}

func Default() Config {
	return Config{
		Port:               ":8080",
		AllowedOrigins:     nil, // empty list allows all origins
		GracePeriod:        2 * time.Second,
		ReapInterval:       10 * time.Second,
		PendingCallTimeout: 30 * time.Second,
		SendBufferSize:     64,
		MaxMessageSize:     4096,
		RateBurst:          10,
		RateRefill:         time.Second,
	}
}

// Load builds a Config from SIGNET_* environment variables on top of the
// defaults.
func Load() Config {
	cfg := Default()

	if port := os.Getenv("SIGNET_PORT"); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Port = port
	}
	if origins := os.Getenv("SIGNET_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}
	cfg.GracePeriod = parseDuration("SIGNET_GRACE_PERIOD", cfg.GracePeriod)
	cfg.ReapInterval = parseDuration("SIGNET_REAP_INTERVAL", cfg.ReapInterval)
	cfg.PendingCallTimeout = parseDuration("SIGNET_PENDING_CALL_TIMEOUT", cfg.PendingCallTimeout)
	cfg.SendBufferSize = parseInt("SIGNET_SEND_BUFFER", cfg.SendBufferSize)
	cfg.MaxMessageSize = int64(parseInt("SIGNET_MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize)))
	cfg.RateBurst = parseInt("SIGNET_RATE_BURST", cfg.RateBurst)
	cfg.RateRefill = parseDuration("SIGNET_RATE_REFILL", cfg.RateRefill)

	return cfg
}

func parseOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return n
	}
	return fallback
}
