package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/rosarium/internal/gardenservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events/stream inside the auth group.
func NewRouter(svc *gardenservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Specimen registry.
	r.Get("/specimens", h.ListSpecimens)
	r.Post("/specimens", h.CreateSpecimen)
	r.Get("/specimens/{id}", h.GetSpecimen)
	r.Put("/specimens/{id}", h.UpdateSpecimen)
	r.Delete("/specimens/{id}", h.DeleteSpecimen)

	// One grid cell: history and new records.
	r.Get("/specimens/{id}/cells/{year}/{month}", h.CellHistory)
	r.Post("/specimens/{id}/cells/{year}/{month}", h.RecordCare)

	// Care events.
	r.Post("/events/batch", h.RecordBatch)
	r.Get("/events/{id}", h.GetEvent)
	r.Put("/events/{id}", h.EditCare)
	r.Delete("/events/{id}", h.DeleteEvent)
	r.Get("/events/{id}/photos/{which}", h.GetPhoto)
	r.Put("/events/{id}/photos/{which}", h.UploadPhoto)

	// Sheet and the year window.
	r.Get("/sheet", h.Sheet)
	r.Post("/sheet/scroll", h.Scroll)
	r.Post("/sheet/layout", h.Layout)
	r.Post("/sheet/seek", h.Seek)
	r.Post("/sheet/reset", h.ResetWindow)

	// Reports.
	r.Get("/summary", h.Summary)
	r.Get("/album", h.Album)

	// Reference data.
	r.Get("/catalog/care-types", h.CareTypes)
	r.Get("/catalog/brands", h.Brands)
	r.Get("/catalog/varieties", h.Varieties)
	r.Get("/catalog/products", h.Products)
	r.Get("/catalog/soils", h.Soils)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events/stream", sseHandler.ServeHTTP)
	}

	return r
}
