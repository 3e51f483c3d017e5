package api

import (
	"net/http"
	"strings"
	"time"

	"pichub/cmd/identity"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "username and password are required")
		return
	}

	u, err := h.auth.Register(r.Context(), time.Now().UTC(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "username and password are required")
		return
	}

	u, pair, err := h.auth.Login(r.Context(), time.Now().UTC(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, loginResponse{
		User: toUserResponse(u),
		Tokens: tokenResponse{
			AccessToken:      pair.AccessToken,
			AccessExpiresAt:  pair.AccessExp,
			RefreshToken:     pair.RefreshToken,
			RefreshExpiresAt: pair.RefreshExp,
		},
	})
}

func (h *Handler) handleRefreshTokens(w http.ResponseWriter, r *http.Request) {
	// The body is optional: browser clients carry the token in the cookie.
	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
			return
		}
	}

	tok := h.refreshTokenFromRequest(r, req.RefreshToken)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "refresh token required")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), time.Now().UTC(), tok)
	if err != nil {
		// A dead session's cookies are useless; drop them with the error.
		h.clearAuthCookies(w)
		h.writeDomainError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, refreshResponse{
		Tokens: tokenResponse{
			AccessToken:      pair.AccessToken,
			AccessExpiresAt:  pair.AccessExp,
			RefreshToken:     pair.RefreshToken,
			RefreshExpiresAt: pair.RefreshExp,
		},
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Authenticated: true,
		User:          toUserResponse(u),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), time.Now().UTC(), u.ID); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r, u)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "user id is required")
		return
	}

	u, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeProfile(w, r, u)
}

// writeProfile joins the user record with their uploads and gallery
// memberships.
func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, u identity.User) {
	uploads, err := h.media.ListByUploader(r.Context(), u.Username)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	galleries, err := h.galleries.ListByMember(r.Context(), u.Username)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		userResponse: toUserResponse(u),
		Uploads:      uploads,
		Galleries:    galleries,
	})
}
