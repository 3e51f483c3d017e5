package app

import (
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("PICHUB_TEST_STR", "  hello  ")
	if got := EnvString("PICHUB_TEST_STR", "def"); got != "hello" {
		t.Fatalf("EnvString trimmed value mismatch: %q", got)
	}
	if got := EnvString("PICHUB_TEST_STR_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default mismatch: %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("PICHUB_TEST_BOOL", "false")
	if EnvBool("PICHUB_TEST_BOOL", true) {
		t.Fatalf("EnvBool should return false")
	}
	t.Setenv("PICHUB_TEST_BOOL", "not-a-bool")
	if !EnvBool("PICHUB_TEST_BOOL", true) {
		t.Fatalf("EnvBool should fall back to default on parse error")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("PICHUB_TEST_INT", "42")
	if got := EnvInt("PICHUB_TEST_INT", 7); got != 42 {
		t.Fatalf("EnvInt=%d want=42", got)
	}
	t.Setenv("PICHUB_TEST_INT", "-3")
	if got := EnvInt("PICHUB_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt should reject non-positive values, got %d", got)
	}
}

func TestEnvInt32(t *testing.T) {
	t.Setenv("PICHUB_TEST_INT32", "0")
	if got := EnvInt32("PICHUB_TEST_INT32", 5); got != 0 {
		t.Fatalf("EnvInt32 should accept zero, got %d", got)
	}
	t.Setenv("PICHUB_TEST_INT32", "-1")
	if got := EnvInt32("PICHUB_TEST_INT32", 5); got != 5 {
		t.Fatalf("EnvInt32 should reject negatives, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("PICHUB_TEST_DUR", "90s")
	if got := EnvDuration("PICHUB_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration=%v want=90s", got)
	}
	t.Setenv("PICHUB_TEST_DUR", "banana")
	if got := EnvDuration("PICHUB_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("EnvDuration should fall back to default, got %v", got)
	}
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("PICHUB_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("PICHUB_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("PICHUB_DB_SCHEMA", "")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.DBSchema != "pichub" {
		t.Fatalf("DBSchema default mismatch: %q", cfg.DBSchema)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins=%v", cfg.CORSAllowedOrigins)
	}
	if !cfg.CORSAllowCredentials {
		t.Fatalf("CORSAllowCredentials should default to true")
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("ReadTimeout default mismatch: %v", cfg.ReadTimeout)
	}
}
