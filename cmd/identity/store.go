package identity

import (
	"context"
	"time"
)

// User is pichub's canonical security principal, in its sanitized
// projection: no password hash, no refresh token digest. This is the only
// shape that crosses into HTTP responses and request contexts.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAuth is the credential-bearing view of a user record.
// IMPORTANT: RefreshTokenHash is a digest; the plain refresh token is never
// stored. A nil RefreshTokenHash means the account has no live session.
type UserAuth struct {
	User
	PasswordHash     string
	RefreshTokenHash *string
}

// CreateUserInput describes a registration request.
// Username must already be normalized (see NormalizeUsername) and
// PasswordHash must already be produced by the password hasher.
type CreateUserInput struct {
	Username     string
	PasswordHash string
	Now          time.Time
}

// Store is the credential persistence boundary.
//
// All operations are atomic at the single-record level. The store reports
// failures through the sentinel kinds in kinds.go; anything else is an
// infrastructure fault that callers surface as an internal error.
type Store interface {
	// CreateUser inserts a new user. A duplicate username fails with a
	// ConflictError and leaves the store unchanged.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByID returns the sanitized projection.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserByUsername returns the sanitized projection for a normalized username.
	GetUserByUsername(ctx context.Context, username string) (User, error)

	// GetUserAuthByUsername returns the credential-bearing view for login.
	GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error)

	// SetRefreshToken overwrites the stored refresh-token digest,
	// implicitly invalidating any previous session.
	SetRefreshToken(ctx context.Context, userID, tokenHash string, now time.Time) error

	// RotateRefreshToken replaces oldHash with newHash in a single
	// conditional write. If the stored digest does not equal oldHash (the
	// session was rotated elsewhere or logged out) or the user is missing,
	// it fails with ErrNotActive and writes nothing. Exactly one of two
	// concurrent rotations with the same oldHash can win.
	RotateRefreshToken(ctx context.Context, userID, oldHash, newHash string, now time.Time) error

	// ClearRefreshToken removes the stored digest. Clearing an already-absent
	// digest is a no-op success (logout is idempotent).
	ClearRefreshToken(ctx context.Context, userID string, now time.Time) error
}
