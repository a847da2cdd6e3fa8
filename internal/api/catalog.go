package api

import (
	"net/http"

	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/models"
)

// CareTypes handles GET /api/catalog/care-types.
func (h *Handler) CareTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.CareTypes())
}

// Brands handles GET /api/catalog/brands.
func (h *Handler) Brands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Brands())
}

// Varieties handles GET /api/catalog/varieties?q=.
//
//	@Summary		Autocomplete variety names
//	@Tags			catalog
//	@Produce		json
//	@Param			q	query	string	true	"Part of the variety name"
//	@Success		200	{array}	catalog.VarietyMatch
//	@Failure		400	{object}	errResponse
//	@Router			/catalog/varieties [get]
func (h *Handler) Varieties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	hits := catalog.SearchVarieties(q)
	if hits == nil {
		hits = []catalog.VarietyMatch{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// Products handles GET /api/catalog/products, optionally filtered by ?type=.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("type")
	if t == "" {
		writeJSON(w, http.StatusOK, catalog.Products())
		return
	}
	if !catalog.IsCareType(models.CareTypeID(t)) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown care type"))
		return
	}
	products := catalog.ProductsFor(models.CareTypeID(t))
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Soils handles GET /api/catalog/soils.
func (h *Handler) Soils(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.SoilComponents())
}
