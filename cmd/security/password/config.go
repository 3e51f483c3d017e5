package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls password validation.
// MaxLength is capped at 72 because bcrypt ignores input beyond 72 bytes.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor. The floor is 10; anything below is a
	// configuration error, not a silent fallback.
	Cost   int
	Policy Policy
}

// DefaultConfig returns the baseline hashing configuration.
// Cost 11 keeps interactive logins fast while staying above the floor.
func DefaultConfig() Config {
	return Config{
		Cost: 11,
		Policy: Policy{
			MinLength: 8,
			MaxLength: 72,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
//   - PICHUB_BCRYPT_COST
//   - PICHUB_PASSWORD_MIN_LEN
//   - PICHUB_PASSWORD_MAX_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("PICHUB_BCRYPT_COST"); ok {
		n, err := atoiInRange(v, 10, bcrypt.MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("PICHUB_BCRYPT_COST: %w", err)
		}
		cfg.Cost = n
	}

	if v, ok := os.LookupEnv("PICHUB_PASSWORD_MIN_LEN"); ok {
		n, err := atoiInRange(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("PICHUB_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("PICHUB_PASSWORD_MAX_LEN"); ok {
		n, err := atoiInRange(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("PICHUB_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func atoiInRange(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}

	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}
