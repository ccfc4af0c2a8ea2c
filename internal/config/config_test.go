package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != ":8080" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.GracePeriod != 2*time.Second {
		t.Fatalf("unexpected default grace period: %s", cfg.GracePeriod)
	}
	if cfg.PendingCallTimeout != 30*time.Second {
		t.Fatalf("unexpected default call timeout: %s", cfg.PendingCallTimeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected no default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SIGNET_PORT", "9090")
	t.Setenv("SIGNET_ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("SIGNET_GRACE_PERIOD", "500ms")
	t.Setenv("SIGNET_PENDING_CALL_TIMEOUT", "45s")
	t.Setenv("SIGNET_SEND_BUFFER", "128")

	cfg := Load()

	if cfg.Port != ":9090" {
		t.Fatalf("port not normalized with colon: %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.GracePeriod != 500*time.Millisecond {
		t.Fatalf("grace period not parsed: %s", cfg.GracePeriod)
	}
	if cfg.PendingCallTimeout != 45*time.Second {
		t.Fatalf("call timeout not parsed: %s", cfg.PendingCallTimeout)
	}
	if cfg.SendBufferSize != 128 {
		t.Fatalf("send buffer not parsed: %d", cfg.SendBufferSize)
	}
}

func TestLoadFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SIGNET_GRACE_PERIOD", "not-a-duration")
	t.Setenv("SIGNET_SEND_BUFFER", "-3")
	t.Setenv("SIGNET_RATE_BURST", "zero")

	cfg := Load()

	def := Default()
	if cfg.GracePeriod != def.GracePeriod {
		t.Fatalf("garbage duration accepted: %s", cfg.GracePeriod)
	}
	if cfg.SendBufferSize != def.SendBufferSize {
		t.Fatalf("negative buffer accepted: %d", cfg.SendBufferSize)
	}
	if cfg.RateBurst != def.RateBurst {
		t.Fatalf("garbage burst accepted: %d", cfg.RateBurst)
	}
}
