package api

import (
	"net/http"
	"strings"
	"time"

	"pichub/cmd/internal/auth/session"
)

// setAuthCookies installs both token cookies. They are HttpOnly so scripts on
// the page can never read them; browser clients authenticate purely by cookie
// while API clients use the Authorization header.
func (h *Handler) setAuthCookies(w http.ResponseWriter, pair session.TokenPair) {
	h.setCookie(w, h.cfg.AccessCookieName, pair.AccessToken, pair.AccessExp)
	h.setCookie(w, h.cfg.RefreshCookieName, pair.RefreshToken, pair.RefreshExp)
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	h.expireCookie(w, h.cfg.AccessCookieName)
	h.expireCookie(w, h.cfg.RefreshCookieName)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

// accessTokenFromRequest prefers the cookie, then the Authorization header.
func (h *Handler) accessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(h.cfg.AccessCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return bearerToken(r)
}

// refreshTokenFromRequest prefers the cookie, then the body token.
func (h *Handler) refreshTokenFromRequest(r *http.Request, bodyToken string) string {
	if c, err := r.Cookie(h.cfg.RefreshCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return strings.TrimSpace(bodyToken)
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
