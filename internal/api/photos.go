package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxPhotoBytes = 10 << 20 // 10 MB

// GetPhoto handles GET /api/events/{id}/photos/{which}.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := h.svc.Photo(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "which"))
	if err != nil {
		writeError(w, "get photo", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UploadPhoto handles PUT /api/events/{id}/photos/{which}
// (multipart/form-data, field "file").
//
//	@Summary		Attach a before or after photo to a pruning event
//	@Tags			photos
//	@Accept			mpfd
//	@Produce		json
//	@Param			id		path		string	true	"Event id"
//	@Param			which	path		string	true	"Slot"	Enums(before, after)
//	@Param			file	formData	file	true	"Image"
//	@Success		200		{object}	PhotoUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id}/photos/{which} [put]
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(data) > maxPhotoBytes {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large"))
		return
	}

	id, which := chi.URLParam(r, "id"), chi.URLParam(r, "which")
	if _, err := h.svc.AttachPhoto(r.Context(), id, which, data); err != nil {
		writeError(w, "attach photo", err)
		return
	}
	writeJSON(w, http.StatusOK, PhotoUploadResponse{
		EventID:     id,
		Slot:        which,
		ContentType: http.DetectContentType(data),
		Size:        len(data),
	})
}
