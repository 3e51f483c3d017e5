// Package api wires pichub's HTTP surface to the auth, gallery, and media
// services: JSON codecs, cookie transport, the request authorizer, and the
// mapping from service errors to the API error taxonomy.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pichub/cmd/identity"
	"pichub/cmd/internal/assets"
	"pichub/cmd/internal/auth/session"
	"pichub/cmd/internal/gallery"
	"pichub/cmd/internal/media"
	"pichub/cmd/security/password"
)

// Handler wires HTTP endpoints to the domain services.
type Handler struct {
	log *slog.Logger
	cfg Config

	auth      *session.Service
	users     identity.Store
	galleries *gallery.Service
	media     *media.Service
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, cfg Config, auth *session.Service, users identity.Store, galleries *gallery.Service, mediaSvc *media.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if auth == nil || users == nil || galleries == nil || mediaSvc == nil {
		return nil, errors.New("api: nil service dependency")
	}
	return &Handler{
		log:       log,
		cfg:       cfg,
		auth:      auth,
		users:     users,
		galleries: galleries,
		media:     mediaSvc,
	}, nil
}

// Register wires all routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}

	mux.HandleFunc("POST /api/v1/user/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/user/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/user/refresh-tokens", h.handleRefreshTokens)
	mux.HandleFunc("GET /api/v1/user/status", h.requireUser(h.handleStatus))
	mux.HandleFunc("POST /api/v1/user/logout", h.requireUser(h.handleLogout))
	mux.HandleFunc("GET /api/v1/user/get", h.requireUser(h.handleGetSelf))
	mux.HandleFunc("GET /api/v1/user/get/{id}", h.requireUser(h.handleGetUser))

	mux.HandleFunc("POST /api/v1/gallery/create", h.requireUser(h.handleGalleryCreate))
	mux.HandleFunc("POST /api/v1/gallery/add-member", h.requireUser(h.handleGalleryAddMember))
	mux.HandleFunc("GET /api/v1/gallery/get-members/{id}", h.requireUser(h.handleGalleryMembers))
	mux.HandleFunc("GET /api/v1/gallery/get-images/{id}", h.requireUser(h.handleGalleryImages))
	mux.HandleFunc("DELETE /api/v1/gallery/delete/{id}", h.requireUser(h.handleGalleryDelete))

	mux.HandleFunc("POST /api/v1/media/upload", h.requireUser(h.handleMediaUpload))
	mux.HandleFunc("POST /api/v1/media/add-to-gallery/{id}", h.requireUser(h.handleMediaAddToGallery))
	mux.HandleFunc("GET /api/v1/media/bring/{id}", h.requireUser(h.handleMediaGet))
	mux.HandleFunc("DELETE /api/v1/media/delete/{id}", h.requireUser(h.handleMediaDelete))
}

// requireUser authenticates the request and attaches the resolved user to the
// context. All protected endpoints fail uniformly with 401: missing, expired,
// and forged tokens are indistinguishable to the client.
func (h *Handler) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := h.accessTokenFromRequest(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}

		u, err := h.auth.Authenticate(r.Context(), time.Now().UTC(), tok)
		if err != nil {
			if errors.Is(err, session.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			h.internalError(w, r, err)
			return
		}

		next(w, r.WithContext(identity.ContextWithUser(r.Context(), u)))
	}
}

// mustUser fetches the principal the authorizer attached. Reaching a protected
// handler without one is a programming error, reported as 401 regardless.
func (h *Handler) mustUser(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	u, ok := identity.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return u, ok
}

// writeDomainError maps service errors onto the API taxonomy.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case identity.IsInvalidInput(err),
		errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong),
		errors.Is(err, gallery.ErrInvalidInput), errors.Is(err, media.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())

	case identity.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", "username already taken")

	case identity.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, gallery.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "gallery not found")
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "media not found")

	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrSessionNotActive):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials or token")

	case errors.Is(err, gallery.ErrNotMember):
		writeError(w, http.StatusForbidden, "forbidden", "not a member of this gallery")
	case errors.Is(err, gallery.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", "only the owner may do this")
	case errors.Is(err, gallery.ErrAlreadyMember):
		writeError(w, http.StatusForbidden, "forbidden", "user is already a member")
	case errors.Is(err, gallery.ErrMemberLimit):
		writeError(w, http.StatusForbidden, "forbidden", "gallery member limit reached")
	case errors.Is(err, media.ErrNotUploader):
		writeError(w, http.StatusForbidden, "forbidden", "only the uploader may delete media")

	case errors.Is(err, media.ErrAlreadyInGallery):
		writeError(w, http.StatusBadRequest, "invalid_input", "media already in this gallery")

	case errors.Is(err, assets.ErrHostUnavailable):
		h.log.Error("asset host failure", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadGateway, "bad_gateway", "asset host unavailable")

	default:
		h.internalError(w, r, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}
