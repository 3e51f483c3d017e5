package session

import (
	"context"
	"strings"
	"time"

	"pichub/cmd/identity"
	"pichub/cmd/security/password"
	"pichub/cmd/security/token"
)

// Service implements the high-level authentication operations for pichub.
//
// It registers accounts, verifies credentials, issues access/refresh token
// pairs, rotates refresh tokens, and resolves access tokens back to users.
type Service struct {
	cfg     Config
	store   identity.Store
	pw      password.Config
	access  TokenManager
	refresh TokenManager
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// NewService constructs a Service. The token managers are derived from cfg so
// that both always share its issuer and skew settings.
func NewService(cfg Config, store identity.Store, pw password.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		pw:      pw,
		access:  NewAccessTokenManager(cfg),
		refresh: NewRefreshTokenManager(cfg),
	}, nil
}

// Register creates a new account from a plaintext username and password.
//
// The username is normalized before storage; the password is policy-checked
// and hashed by the password package. A duplicate username surfaces as an
// identity.ConflictError.
func (s *Service) Register(ctx context.Context, now time.Time, username, plainPassword string) (identity.User, error) {
	username = identity.NormalizeUsername(username)
	if username == "" {
		return identity.User{}, identity.OpError{
			Op:   "session.Register",
			Kind: identity.ErrInvalidInput,
			Msg:  "username is required",
		}
	}

	hash, err := s.pw.Hash(plainPassword)
	if err != nil {
		return identity.User{}, err
	}

	return s.store.CreateUser(ctx, identity.CreateUserInput{
		Username:     username,
		PasswordHash: hash,
		Now:          now,
	})
}

// Login verifies credentials and issues a fresh token pair.
//
// The refresh token digest is persisted before the pair is returned: a
// partially completed login never hands out tokens the store does not know.
// An unknown username keeps its not-found identity so the transport layer can
// report it distinctly from a bad password.
func (s *Service) Login(ctx context.Context, now time.Time, username, plainPassword string) (identity.User, TokenPair, error) {
	ua, err := s.store.GetUserAuthByUsername(ctx, username)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	ok, err := s.pw.Verify(ua.PasswordHash, plainPassword)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}
	if !ok {
		return identity.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ua.ID, ua.Username, now)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	if err := s.store.SetRefreshToken(ctx, ua.ID, token.HashRefreshTokenHex(pair.RefreshToken), now); err != nil {
		return identity.User{}, TokenPair{}, err
	}

	return ua.User, pair, nil
}

// Refresh rotates a refresh token, returning a fresh pair.
//
// The presented token must both verify as a refresh JWT and still match the
// digest on the user row. The conditional rotation in the store guarantees a
// replayed or concurrently rotated token fails with ErrSessionNotActive.
func (s *Service) Refresh(ctx context.Context, now time.Time, refreshToken string) (TokenPair, error) {
	claims, err := s.refresh.Verify(strings.TrimSpace(refreshToken), now)
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.issuePair(claims.UserID, claims.Username, now)
	if err != nil {
		return TokenPair{}, err
	}

	oldHash := token.HashRefreshTokenHex(strings.TrimSpace(refreshToken))
	newHash := token.HashRefreshTokenHex(pair.RefreshToken)

	if err := s.store.RotateRefreshToken(ctx, claims.UserID, oldHash, newHash, now); err != nil {
		if identity.IsNotActive(err) {
			return TokenPair{}, ErrSessionNotActive
		}
		return TokenPair{}, err
	}

	return pair, nil
}

// Logout clears the user's stored refresh token. Logging out an already
// logged-out user succeeds; the operation is idempotent.
func (s *Service) Logout(ctx context.Context, now time.Time, userID string) error {
	return s.store.ClearRefreshToken(ctx, userID, now)
}

// Authenticate resolves an access token to its user.
//
// Beyond signature and expiry checks, the user must still exist: a token for
// a deleted account is as invalid as a forged one.
func (s *Service) Authenticate(ctx context.Context, now time.Time, accessToken string) (identity.User, error) {
	claims, err := s.access.Verify(strings.TrimSpace(accessToken), now)
	if err != nil {
		return identity.User{}, err
	}

	u, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.User{}, ErrInvalidToken
		}
		return identity.User{}, err
	}
	return u, nil
}

func (s *Service) issuePair(userID, username string, now time.Time) (TokenPair, error) {
	accessTok, accessExp, err := s.access.Issue(userID, username, now)
	if err != nil {
		return TokenPair{}, err
	}
	refreshTok, refreshExp, err := s.refresh.Issue(userID, username, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  accessTok,
		AccessExp:    accessExp,
		RefreshToken: refreshTok,
		RefreshExp:   refreshExp,
	}, nil
}
