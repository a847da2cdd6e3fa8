package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/rosarium/internal/gardenservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *gardenservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *gardenservice.Service) *Handler {
	return &Handler{svc: svc}
}

// cellParams extracts the specimen id and the cell's year and month.
func cellParams(w http.ResponseWriter, r *http.Request) (id string, year, month int, ok bool) {
	id = chi.URLParam(r, "id")
	year, yErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, mErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yErr != nil || mErr != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("year and month must be integers"))
		return "", 0, 0, false
	}
	return id, year, month, true
}

// ListSpecimens handles GET /api/specimens.
//
//	@Summary		List specimens in display order
//	@Tags			specimens
//	@Produce		json
//	@Success		200	{array}	models.Specimen
//	@Security		BearerAuth
//	@Router			/specimens [get]
func (h *Handler) ListSpecimens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Specimens(r.Context()))
}

// GetSpecimen handles GET /api/specimens/{id}.
func (h *Handler) GetSpecimen(w http.ResponseWriter, r *http.Request) {
	spec, err := h.svc.Specimen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get specimen", err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// CreateSpecimen handles POST /api/specimens.
//
//	@Summary		Add a specimen at the head of the registry
//	@Tags			specimens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SpecimenRequest	true	"Specimen to create"
//	@Success		201		{object}	models.Specimen
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/specimens [post]
func (h *Handler) CreateSpecimen(w http.ResponseWriter, r *http.Request) {
	var req SpecimenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	spec, err := h.svc.SaveSpecimen(r.Context(), req.specimen(""))
	if err != nil {
		writeError(w, "create specimen", err)
		return
	}
	writeJSON(w, http.StatusCreated, spec)
}

// UpdateSpecimen handles PUT /api/specimens/{id}.
//
//	@Summary		Replace a specimen in place
//	@Tags			specimens
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Specimen id"
//	@Param			body	body		SpecimenRequest	true	"New fields"
//	@Success		200		{object}	models.Specimen
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/specimens/{id} [put]
func (h *Handler) UpdateSpecimen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Specimen(r.Context(), id); err != nil {
		writeError(w, "update specimen", err)
		return
	}
	var req SpecimenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	spec, err := h.svc.SaveSpecimen(r.Context(), req.specimen(id))
	if err != nil {
		writeError(w, "update specimen", err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// DeleteSpecimen handles DELETE /api/specimens/{id}. The specimen's events
// go with it. Deleting an unknown id succeeds.
//
//	@Summary		Delete a specimen and its events
//	@Tags			specimens
//	@Param			id	path	string	true	"Specimen id"
//	@Success		204	"Specimen deleted"
//	@Security		BearerAuth
//	@Router			/specimens/{id} [delete]
func (h *Handler) DeleteSpecimen(w http.ResponseWriter, r *http.Request) {
	h.svc.RemoveSpecimen(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// CellHistory handles GET /api/specimens/{id}/cells/{year}/{month}.
//
//	@Summary		List the events of one grid cell, latest first
//	@Tags			care
//	@Produce		json
//	@Param			id		path	string	true	"Specimen id"
//	@Param			year	path	int		true	"Year"
//	@Param			month	path	int		true	"Month 1-12"
//	@Success		200		{array}	models.CareEvent
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/specimens/{id}/cells/{year}/{month} [get]
func (h *Handler) CellHistory(w http.ResponseWriter, r *http.Request) {
	id, year, month, ok := cellParams(w, r)
	if !ok {
		return
	}
	events, err := h.svc.History(r.Context(), id, year, month)
	if err != nil {
		writeError(w, "cell history", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// RecordCare handles POST /api/specimens/{id}/cells/{year}/{month}.
//
//	@Summary		Record a care event in a grid cell
//	@Tags			care
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CareRequest	true	"Event fields"
//	@Success		201		{object}	models.CareEvent
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/specimens/{id}/cells/{year}/{month} [post]
func (h *Handler) RecordCare(w http.ResponseWriter, r *http.Request) {
	id, year, month, ok := cellParams(w, r)
	if !ok {
		return
	}
	req := CareRequest{typeRequired: true}
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := h.svc.RecordCare(r.Context(), gardenservice.CareInput{
		SpecimenID: id,
		Year:       year,
		Month:      month,
		Day:        req.Day,
		TypeID:     req.TypeID,
		ProductID:  req.ProductID,
		Note:       req.Note,
		SoilMix:    req.SoilMix,
		PotChange:  req.PotChange,
		Images:     req.Images,
	})
	if err != nil {
		writeError(w, "record care", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Event(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// EditCare handles PUT /api/events/{id}. The event stays in its month.
//
//	@Summary		Edit a care event within its month
//	@Tags			care
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Event id"
//	@Param			body	body		CareRequest	true	"New fields"
//	@Success		200		{object}	models.CareEvent
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [put]
func (h *Handler) EditCare(w http.ResponseWriter, r *http.Request) {
	var req CareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := h.svc.EditCare(r.Context(), chi.URLParam(r, "id"), gardenservice.CareEdit{
		Day:       req.Day,
		TypeID:    req.TypeID,
		ProductID: req.ProductID,
		Note:      req.Note,
		SoilMix:   req.SoilMix,
		PotChange: req.PotChange,
		Images:    req.Images,
	})
	if err != nil {
		writeError(w, "edit care", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.svc.RemoveEvent(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// RecordBatch handles POST /api/events/batch.
//
//	@Summary		Record the same care for several specimens
//	@Tags			care
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BatchRequest	true	"Batch"
//	@Success		201		{object}	gardenservice.BatchResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/batch [post]
func (h *Handler) RecordBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.RecordBatch(r.Context(), req.input())
	if err != nil {
		writeError(w, "record batch", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
