package api

import (
	"net/http"
	"strings"
	"time"
)

func (h *Handler) handleGalleryCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	var req createGalleryRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.GalleryName) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "gallery name is required")
		return
	}

	g, err := h.galleries.Create(r.Context(), time.Now().UTC(), req.GalleryName, u)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) handleGalleryAddMember(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.GalleryID) == "" || strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "galleryId and username are required")
		return
	}

	g, err := h.galleries.AddMember(r.Context(), time.Now().UTC(), req.GalleryID, req.Username, u)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) handleGalleryMembers(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "gallery id is required")
		return
	}

	view, err := h.galleries.Members(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGalleryImages(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "gallery id is required")
		return
	}

	view, err := h.galleries.Images(r.Context(), id, u)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "gallery id is required")
		return
	}

	if err := h.galleries.Delete(r.Context(), id, u); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "gallery deleted"})
}
