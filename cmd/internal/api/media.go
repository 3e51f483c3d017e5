package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pichub/cmd/internal/media"
)

func (h *Handler) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "invalid_input", "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("media")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "no media file received")
		return
	}
	defer func() { _ = file.Close() }()

	m, err := h.media.Upload(r.Context(), time.Now().UTC(), u, media.UploadInput{
		Caption:     r.FormValue("caption"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		GalleryID:   r.FormValue("galleryId"),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleMediaAddToGallery(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	galleryID := strings.TrimSpace(r.PathValue("id"))
	if galleryID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "gallery id is required")
		return
	}

	var req addToGalleryRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.MediaID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "mediaId is required")
		return
	}

	m, err := h.media.AddToGallery(r.Context(), req.MediaID, galleryID, u)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) handleMediaGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "media id is required")
		return
	}

	m, err := h.media.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) handleMediaDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.mustUser(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "media id is required")
		return
	}

	if err := h.media.Delete(r.Context(), id, u); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "media deleted"})
}
