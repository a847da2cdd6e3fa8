package gardenservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/rosarium/internal/apperr"
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/garden"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/sse"
)

// CareInput records care for one specimen in the context of a sheet cell.
type CareInput struct {
	SpecimenID string
	Year       int
	Month      int
	Day        int
	TypeID     models.CareTypeID
	ProductID  string
	Note       string
	SoilMix    models.SoilMix
	PotChange  *models.PotChange
	Images     *models.EventImages
}

// CareEdit changes an existing event. The event keeps its year and month;
// only the day moves.
type CareEdit struct {
	Day       int
	TypeID    models.CareTypeID // empty keeps the current type
	ProductID string
	Note      string
	SoilMix   models.SoilMix
	PotChange *models.PotChange
	Images    *models.EventImages
}

// BatchInput records the same care for several specimens at once.
type BatchInput struct {
	SpecimenIDs []string
	Date        string
	TypeID      models.CareTypeID
	ProductID   string
	SoilID      string
	Note        string
}

// BatchResult carries the recorded events and the month the sheet should
// focus on.
type BatchResult struct {
	Events []models.CareEvent `json:"events"`
	Year   int                `json:"year"`
	Month  int                `json:"month"`
	Years  []int              `json:"years"`
}

var errDay = errors.New("day is outside the month")

// History returns the events of one cell, latest first.
func (s *Service) History(_ context.Context, specimenID string, year, month int) ([]models.CareEvent, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", apperr.ErrInvalid, month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Specimen(specimenID); !ok {
		return nil, apperr.ErrNotFound
	}
	events := s.store.EventsFor(specimenID, year, month, garden.Descending)
	if events == nil {
		events = []models.CareEvent{}
	}
	return events, nil
}

// Event returns one event.
func (s *Service) Event(_ context.Context, id string) (models.CareEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Event(id)
	if !ok {
		return models.CareEvent{}, apperr.ErrNotFound
	}
	return e, nil
}

// RecordCare adds an event dated inside the given cell.
func (s *Service) RecordCare(_ context.Context, in CareInput) (models.CareEvent, error) {
	if in.Month < 1 || in.Month > 12 {
		return models.CareEvent{}, fmt.Errorf("%w: month %d", apperr.ErrInvalid, in.Month)
	}
	if in.Day < 1 || in.Day > models.DaysIn(in.Year, in.Month) {
		return models.CareEvent{}, invalid(errDay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Specimen(in.SpecimenID); !ok {
		return models.CareEvent{}, apperr.ErrNotFound
	}

	e := models.CareEvent{
		ID:         s.newID(),
		SpecimenID: in.SpecimenID,
		Date:       models.FormatDate(in.Year, in.Month, in.Day),
		TypeID:     in.TypeID,
		ProductID:  in.ProductID,
		Note:       strings.TrimSpace(in.Note),
		SoilMix:    in.SoilMix,
		PotChange:  in.PotChange,
		Images:     in.Images,
	}
	if err := checkCare(&e); err != nil {
		return models.CareEvent{}, err
	}
	s.store.AddEvent(e)
	s.changedLocked("event.record")
	s.notifier.PublishChange(sse.CareSaved, e.ID)
	return e, nil
}

// EditCare rewrites an event within its original month.
func (s *Service) EditCare(_ context.Context, id string, in CareEdit) (models.CareEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Event(id)
	if !ok {
		return models.CareEvent{}, apperr.ErrNotFound
	}
	year, month, ok := e.YearMonth()
	if !ok {
		return models.CareEvent{}, fmt.Errorf("%w: stored date %q", apperr.ErrInvalid, e.Date)
	}
	if in.Day < 1 || in.Day > models.DaysIn(year, month) {
		return models.CareEvent{}, invalid(errDay)
	}

	e.Date = models.FormatDate(year, month, in.Day)
	if in.TypeID != "" {
		e.TypeID = in.TypeID
	}
	e.ProductID = in.ProductID
	e.Note = strings.TrimSpace(in.Note)
	e.SoilMix = in.SoilMix
	e.PotChange = in.PotChange
	e.Images = in.Images
	if err := checkCare(&e); err != nil {
		return models.CareEvent{}, err
	}
	s.store.UpdateEvent(e)
	s.changedLocked("event.edit")
	s.notifier.PublishChange(sse.CareSaved, e.ID)
	return e, nil
}

// RecordBatch adds one event per listed specimen, in list order. Soil
// changes record the chosen component as the whole mix. The window is reset
// so the batch year is visible, and the batch month is returned as focus.
func (s *Service) RecordBatch(_ context.Context, in BatchInput) (BatchResult, error) {
	if len(in.SpecimenIDs) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no specimens selected", apperr.ErrInvalid)
	}
	year, month, day, ok := models.SplitDate(in.Date)
	if !ok || day > models.DaysIn(year, month) {
		return BatchResult{}, fmt.Errorf("%w: date %q", apperr.ErrInvalid, in.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]models.CareEvent, 0, len(in.SpecimenIDs))
	for _, sid := range in.SpecimenIDs {
		if _, ok := s.store.Specimen(sid); !ok {
			return BatchResult{}, fmt.Errorf("specimen %q: %w", sid, apperr.ErrNotFound)
		}
		e := models.CareEvent{
			ID:         s.newID(),
			SpecimenID: sid,
			Date:       in.Date,
			TypeID:     in.TypeID,
			ProductID:  in.ProductID,
			Note:       strings.TrimSpace(in.Note),
		}
		if in.SoilID != "" {
			e.SoilMix = models.SoilMix{{SoilID: in.SoilID, Value: 1}}
		}
		if err := checkCare(&e); err != nil {
			return BatchResult{}, err
		}
		events = append(events, e)
	}

	s.store.AddEvents(events)
	s.window.Reset(s.initialYears(year))
	s.changedLocked("event.batch")
	for _, e := range events {
		s.notifier.PublishChange(sse.CareSaved, e.ID)
	}
	return BatchResult{Events: events, Year: year, Month: month, Years: s.window.Years()}, nil
}

// RemoveEvent deletes an event. A missing id is a no-op.
func (s *Service) RemoveEvent(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.RemoveEvent(id) {
		return
	}
	s.changedLocked("event.remove")
	s.notifier.PublishChange(sse.CareRemoved, id)
}

// checkCare validates an event against the catalog and drops payloads that
// do not belong to its care type.
func checkCare(e *models.CareEvent) error {
	if !catalog.IsCareType(e.TypeID) {
		return fmt.Errorf("%w: unknown care type %q", apperr.ErrInvalid, e.TypeID)
	}
	if e.ProductID != "" {
		p, ok := catalog.LookupProduct(e.ProductID)
		if !ok {
			return fmt.Errorf("%w: unknown product %q", apperr.ErrInvalid, e.ProductID)
		}
		if p.TypeID != e.TypeID {
			return fmt.Errorf("%w: product %q is not a %s product", apperr.ErrInvalid, e.ProductID, e.TypeID)
		}
	}
	if e.TypeID != models.CareSoil || len(e.SoilMix) == 0 {
		e.SoilMix = nil
	}
	for _, part := range e.SoilMix {
		if _, ok := catalog.LookupSoil(part.SoilID); !ok {
			return fmt.Errorf("%w: unknown soil component %q", apperr.ErrInvalid, part.SoilID)
		}
	}
	if e.TypeID != models.CareRepot {
		e.PotChange = nil
	}
	if e.TypeID != models.CarePruning || e.Images.Empty() {
		e.Images = nil
	}
	if err := e.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}
