package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token types. The kind travels inside the signed
// payload, so a refresh token presented on an authorized endpoint fails
// verification even before the secret mismatch is considered.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the verified, trusted view of a token.
type Claims struct {
	UserID   string
	Username string
	Kind     Kind
	IssuedAt time.Time
	Expires  time.Time
}

// TokenManager issues and verifies signed tokens for a single kind.
type TokenManager interface {
	// Issue creates a token for the user expiring at now+TTL.
	Issue(userID, username string, now time.Time) (token string, exp time.Time, err error)

	// Verify parses and validates a token at the given time. Any failure
	// (bad signature, expired, wrong kind, malformed) returns ErrInvalidToken.
	Verify(token string, now time.Time) (Claims, error)
}

// jwtClaims is the wire shape of pichub tokens.
type jwtClaims struct {
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// jwtManager signs and verifies HS256 JWTs of one Kind.
type jwtManager struct {
	kind   Kind
	secret []byte
	issuer string
	ttl    time.Duration
	skew   time.Duration
}

// NewAccessTokenManager builds the manager for short-lived access tokens.
func NewAccessTokenManager(cfg Config) TokenManager {
	return &jwtManager{
		kind:   KindAccess,
		secret: cfg.AccessTokenSecret,
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		skew:   cfg.ClockSkew,
	}
}

// NewRefreshTokenManager builds the manager for refresh tokens.
func NewRefreshTokenManager(cfg Config) TokenManager {
	return &jwtManager{
		kind:   KindRefresh,
		secret: cfg.RefreshTokenSecret,
		issuer: cfg.Issuer,
		ttl:    cfg.RefreshTokenTTL,
		skew:   cfg.ClockSkew,
	}
}

func (m *jwtManager) Issue(userID, username string, now time.Time) (string, time.Time, error) {
	now = now.UTC()
	exp := now.Add(m.ttl)

	claims := jwtClaims{
		Username: username,
		Kind:     string(m.kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *jwtManager) Verify(token string, now time.Time) (Claims, error) {
	if token == "" || len(token) > 4096 {
		return Claims{}, ErrInvalidToken
	}

	var claims jwtClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.skew),
		jwt.WithTimeFunc(func() time.Time { return now.UTC() }),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != string(m.kind) {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Kind:     m.kind,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.Expires = claims.ExpiresAt.Time
	}
	return out, nil
}
