package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/rosarium/internal/storage"
)

// maxImportBytes bounds a whole snapshot document, embedded photos included.
const maxImportBytes = 256 << 20 // 256 MB

// Summary handles GET /api/summary?year=. The year defaults to the current one.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("year must be an integer"))
			return
		}
		year = n
	}
	writeJSON(w, http.StatusOK, h.svc.Summary(r.Context(), year))
}

// Album handles GET /api/album.
func (h *Handler) Album(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Album(r.Context()))
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings(r.Context()))
}

// UpdateSettings handles PUT /api/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	settings, err := h.svc.UpdateSettings(r.Context(), req.AppSettings)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Export handles GET /api/export. The snapshot is served as a download.
//
//	@Summary		Download the whole garden as a snapshot document
//	@Tags			transfer
//	@Produce		json
//	@Success		200	{object}	models.Snapshot
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := storage.EncodeIndent(h.svc.Export(r.Context()))
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rosarium.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import. The body is a JSON or YAML snapshot
// document and replaces the garden wholesale. Unreadable records are
// dropped and listed as warnings; a document with nothing readable in it
// is rejected.
//
//	@Summary		Replace the garden with a snapshot document
//	@Tags			transfer
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		400	{object}	errResponse
//	@Failure		413	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("snapshot document too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	snap, warnings, err := storage.DecodeImport(body)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	if len(warnings) > 0 {
		slog.Warn("import dropped records", slog.Int("problems", len(warnings)))
	}

	years := h.svc.Import(r.Context(), snap)
	writeJSON(w, http.StatusOK, ImportResponse{
		Specimens: len(snap.Specimens),
		Events:    len(snap.Events),
		Years:     years,
		Warnings:  warnings,
	})
}
