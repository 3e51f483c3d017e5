package session

import (
	"fmt"
	"os"
	"time"
)

// Config defines all runtime configuration for the authentication core.
//
// It controls token TTLs, clock skew tolerance, and the HS256 signing secrets
// for the two token kinds. The struct is intentionally explicit and
// environment-driven so production deployments can tune security parameters
// without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of issued tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of refresh tokens. It bounds the
	// length of a session: rotation issues a fresh token with a full TTL.
	RefreshTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// AccessTokenSecret and RefreshTokenSecret are independent HS256 signing
	// keys. Keeping them separate means an access token can never pass as a
	// refresh token even if the kind claim were mishandled.
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
}

// minSecretBytes is the minimum accepted HS256 key length.
const minSecretBytes = 32

// DefaultConfig returns defaults suitable for development.
// Secrets are NOT defaulted; they must come from the environment.
func DefaultConfig() Config {
	return Config{
		Issuer:          "pichub",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ClockSkew:       30 * time.Second,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - PICHUB_ACCESS_TOKEN_SECRET  (>= 32 bytes)
//   - PICHUB_REFRESH_TOKEN_SECRET (>= 32 bytes, distinct from access secret)
//
// Optional (durations must be valid Go duration strings):
//   - PICHUB_AUTH_ISSUER
//   - PICHUB_AUTH_ACCESS_TTL
//   - PICHUB_AUTH_REFRESH_TTL
//   - PICHUB_AUTH_CLOCK_SKEW
//
// Returns an error wrapping ErrConfig if configuration is invalid. Missing
// secrets fail fast here rather than at first token issuance.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("PICHUB_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("PICHUB_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: PICHUB_AUTH_ACCESS_TTL", ErrConfig)
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("PICHUB_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: PICHUB_AUTH_REFRESH_TTL", ErrConfig)
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("PICHUB_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("%w: PICHUB_AUTH_CLOCK_SKEW", ErrConfig)
		}
		cfg.ClockSkew = d
	}

	access := os.Getenv("PICHUB_ACCESS_TOKEN_SECRET")
	refresh := os.Getenv("PICHUB_REFRESH_TOKEN_SECRET")
	if len(access) < minSecretBytes {
		return Config{}, fmt.Errorf("%w: PICHUB_ACCESS_TOKEN_SECRET must be at least %d bytes", ErrConfig, minSecretBytes)
	}
	if len(refresh) < minSecretBytes {
		return Config{}, fmt.Errorf("%w: PICHUB_REFRESH_TOKEN_SECRET must be at least %d bytes", ErrConfig, minSecretBytes)
	}
	if access == refresh {
		return Config{}, fmt.Errorf("%w: access and refresh secrets must differ", ErrConfig)
	}
	cfg.AccessTokenSecret = []byte(access)
	cfg.RefreshTokenSecret = []byte(refresh)

	return cfg, nil
}

// Validate checks a programmatically constructed Config.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("%w: empty issuer", ErrConfig)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: non-positive token TTL", ErrConfig)
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("%w: negative clock skew", ErrConfig)
	}
	if len(c.AccessTokenSecret) < minSecretBytes || len(c.RefreshTokenSecret) < minSecretBytes {
		return fmt.Errorf("%w: signing secret too short", ErrConfig)
	}
	if string(c.AccessTokenSecret) == string(c.RefreshTokenSecret) {
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrConfig)
	}
	return nil
}
