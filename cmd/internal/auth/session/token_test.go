package session

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AccessTokenSecret = []byte("access-secret-0123456789abcdef0123456789")
	cfg.RefreshTokenSecret = []byte("refresh-secret-0123456789abcdef012345678")
	return cfg
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	cfg := testConfig()
	m := NewAccessTokenManager(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, exp, err := m.Issue("01ABCDEF", "alice", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if wantExp := now.Add(cfg.AccessTokenTTL); !exp.Equal(wantExp) {
		t.Fatalf("exp = %v, want %v", exp, wantExp)
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "01ABCDEF" || claims.Username != "alice" || claims.Kind != KindAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	cfg := testConfig()
	m := NewAccessTokenManager(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, _, err := m.Issue("01ABCDEF", "alice", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Past the TTL plus the allowed skew.
	late := now.Add(cfg.AccessTokenTTL + cfg.ClockSkew + time.Second)
	if _, err := m.Verify(tok, late); err != ErrInvalidToken {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}

	// Within skew it still verifies.
	within := now.Add(cfg.AccessTokenTTL + cfg.ClockSkew - time.Second)
	if _, err := m.Verify(tok, within); err != nil {
		t.Fatalf("token within skew: %v", err)
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	cfg := testConfig()
	access := NewAccessTokenManager(cfg)
	refresh := NewRefreshTokenManager(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	refreshTok, _, err := refresh.Issue("01ABCDEF", "alice", now)
	if err != nil {
		t.Fatalf("Issue refresh: %v", err)
	}

	// A refresh token must never pass access verification: the secrets
	// differ and the kind claim differs.
	if _, err := access.Verify(refreshTok, now); err != ErrInvalidToken {
		t.Fatalf("refresh-as-access: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	cfg := testConfig()
	m := NewAccessTokenManager(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, _, err := m.Issue("01ABCDEF", "alice", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.Verify(tampered, now); err != ErrInvalidToken {
		t.Fatalf("tampered token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewAccessTokenManager(testConfig())
	now := time.Now().UTC()

	for _, tok := range []string{"", "not-a-jwt", "a.b", strings.Repeat("x", 5000)} {
		if _, err := m.Verify(tok, now); err != ErrInvalidToken {
			t.Fatalf("Verify(%.20q): got %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	other := cfg
	other.Issuer = "someone-else"

	now := time.Now().UTC()
	tok, _, err := NewAccessTokenManager(other).Issue("01ABCDEF", "alice", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewAccessTokenManager(cfg).Verify(tok, now); err != ErrInvalidToken {
		t.Fatalf("wrong issuer: got %v, want ErrInvalidToken", err)
	}
}
