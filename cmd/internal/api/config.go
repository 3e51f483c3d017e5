package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls API transport behavior and cookie defaults.
type Config struct {
	// AccessCookieName and RefreshCookieName are the browser transport for
	// the token pair. Both cookies are HttpOnly.
	AccessCookieName  string
	RefreshCookieName string

	CookiePath   string
	CookieDomain string
	CookieSecure bool
	// CookieSameSite is None so the SPA can live on a different origin than
	// the API; Secure must stay on for browsers to accept that combination.
	CookieSameSite http.SameSite

	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64

	// MaxUploadBytes bounds multipart media uploads.
	MaxUploadBytes int64
}

// DefaultConfig returns production-safe defaults.
func DefaultConfig() Config {
	return Config{
		AccessCookieName:  "accessToken",
		RefreshCookieName: "refreshToken",
		CookiePath:        "/",
		CookieSecure:      true,
		CookieSameSite:    http.SameSiteNoneMode,
		MaxBodyBytes:      1 << 20,  // 1 MiB
		MaxUploadBytes:    32 << 20, // 32 MiB
	}
}

// LoadConfigFromEnv loads API config from environment variables with safe
// defaults. Invalid values fall back rather than fail: transport limits are
// tunables, not correctness knobs.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("PICHUB_COOKIE_DOMAIN")); v != "" {
		cfg.CookieDomain = v
	}
	cfg.CookieSecure = envBool("PICHUB_COOKIE_SECURE", cfg.CookieSecure)
	cfg.MaxBodyBytes = envInt64("PICHUB_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.MaxUploadBytes = envInt64("PICHUB_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
