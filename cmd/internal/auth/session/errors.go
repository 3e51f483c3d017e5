package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails verification or
	// validation. Expired, malformed, wrong-kind, and wrong-signature tokens
	// are deliberately indistinguishable through this error.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned by Login when the password does not
	// match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotActive is returned when a refresh token no longer matches
	// the user's stored session (rotated elsewhere, logged out, or replayed).
	ErrSessionNotActive = errors.New("session not active")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
