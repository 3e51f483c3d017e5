package session

import (
	"errors"
	"testing"
	"time"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdef0123456789"
	testRefreshSecret = "refresh-secret-0123456789abcdef012345678"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("PICHUB_ACCESS_TOKEN_SECRET", testAccessSecret)
	t.Setenv("PICHUB_REFRESH_TOKEN_SECRET", testRefreshSecret)

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "pichub" {
		t.Fatalf("Issuer = %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL = %v", cfg.RefreshTokenTTL)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("PICHUB_ACCESS_TOKEN_SECRET", testAccessSecret)
	t.Setenv("PICHUB_REFRESH_TOKEN_SECRET", testRefreshSecret)
	t.Setenv("PICHUB_AUTH_ISSUER", "pichub-stage")
	t.Setenv("PICHUB_AUTH_ACCESS_TTL", "5m")
	t.Setenv("PICHUB_AUTH_REFRESH_TTL", "48h")
	t.Setenv("PICHUB_AUTH_CLOCK_SKEW", "10s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "pichub-stage" {
		t.Fatalf("Issuer = %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 5*time.Minute || cfg.RefreshTokenTTL != 48*time.Hour || cfg.ClockSkew != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}

func TestLoadConfigFromEnvMissingSecrets(t *testing.T) {
	t.Setenv("PICHUB_ACCESS_TOKEN_SECRET", "")
	t.Setenv("PICHUB_REFRESH_TOKEN_SECRET", "")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing secrets: got %v, want ErrConfig", err)
	}
}

func TestLoadConfigFromEnvEqualSecrets(t *testing.T) {
	t.Setenv("PICHUB_ACCESS_TOKEN_SECRET", testAccessSecret)
	t.Setenv("PICHUB_REFRESH_TOKEN_SECRET", testAccessSecret)

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("equal secrets: got %v, want ErrConfig", err)
	}
}

func TestLoadConfigFromEnvBadDuration(t *testing.T) {
	t.Setenv("PICHUB_ACCESS_TOKEN_SECRET", testAccessSecret)
	t.Setenv("PICHUB_REFRESH_TOKEN_SECRET", testRefreshSecret)
	t.Setenv("PICHUB_AUTH_ACCESS_TTL", "soon")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("bad duration: got %v, want ErrConfig", err)
	}
}
