package gardenservice

import (
	"context"
	"strings"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/sse"
)

// Specimens returns the registry in display order.
func (s *Service) Specimens(_ context.Context) []models.Specimen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Specimens()
}

// Specimen returns one specimen.
func (s *Service) Specimen(_ context.Context, id string) (models.Specimen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.store.Specimen(id)
	if !ok {
		return models.Specimen{}, apperr.ErrNotFound
	}
	return spec, nil
}

// SaveSpecimen creates a specimen when spec has no id, otherwise replaces the
// one with that id in place (or adds it at the head when there is none).
// New specimens get a fresh id and default to today's acquisition date; an
// empty brand becomes the unknown sentinel.
func (s *Service) SaveSpecimen(_ context.Context, spec models.Specimen) (models.Specimen, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Brand = catalog.NormalizeBrand(spec.Brand)

	s.mu.Lock()
	defer s.mu.Unlock()

	if spec.ID == "" {
		spec.ID = s.newID()
		if spec.AcquisitionDate == "" {
			spec.AcquisitionDate = s.now().Format("2006-01-02")
		}
	}
	if err := spec.Validate(); err != nil {
		return models.Specimen{}, invalid(err)
	}

	s.store.UpsertSpecimen(spec)
	s.changedLocked("specimen.save")
	s.notifier.PublishChange(sse.SpecimenSaved, spec.ID)
	return spec, nil
}

// RemoveSpecimen deletes a specimen together with its events. A missing id
// is a no-op.
func (s *Service) RemoveSpecimen(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.RemoveSpecimen(id) {
		return
	}
	s.changedLocked("specimen.remove")
	s.notifier.PublishChange(sse.SpecimenRemoved, id)
}
