package api

import (
	"net/http"
)

// Sheet handles GET /api/sheet.
//
//	@Summary		Project the garden over the current year window
//	@Tags			sheet
//	@Produce		json
//	@Success		200	{object}	gardenservice.Sheet
//	@Security		BearerAuth
//	@Router			/sheet [get]
func (h *Handler) Sheet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Sheet(r.Context()))
}

// Scroll handles POST /api/sheet/scroll. The response says whether a year
// was added at either end.
func (h *Handler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Scroll(r.Context(), req.Metrics))
}

// Layout handles POST /api/sheet/layout, sent after the client re-rendered.
// When a prepend is pending the response carries the offset that keeps the
// same months under the viewport.
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Layout(r.Context(), req.Metrics))
}

// Seek handles POST /api/sheet/seek.
func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	var req SeekRequest
	if !decodeBody(w, r, &req) {
		return
	}
	offset, err := h.svc.Seek(r.Context(), req.Year, req.Month, req.Metrics)
	if err != nil {
		writeError(w, "seek", err)
		return
	}
	writeJSON(w, http.StatusOK, SeekResponse{Offset: offset})
}

// ResetWindow handles POST /api/sheet/reset.
func (h *Handler) ResetWindow(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, YearsResponse{Years: h.svc.ResetWindow(r.Context(), req.TargetYear)})
}
