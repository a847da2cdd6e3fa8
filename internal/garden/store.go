// Package garden holds the canonical specimen and care-event collections.
//
// A Store is not safe for concurrent use; the owning controller serialises
// access. Mutations that miss their target are no-ops.
package garden

import (
	"sort"
	"strings"

	"github.com/starford/rosarium/internal/models"
)

// Order selects how cell queries sort their results.
type Order int

const (
	// Insertion keeps the order in which events were added.
	Insertion Order = iota
	// Ascending sorts by date, earliest first (calendar chips).
	Ascending
	// Descending sorts by date, latest first (history lists).
	Descending
)

// Store is the in-memory Event Store and Specimen Registry.
type Store struct {
	specimens []models.Specimen
	events    []models.CareEvent
}

// New returns a store holding copies of the given collections.
func New(specimens []models.Specimen, events []models.CareEvent) *Store {
	s := &Store{}
	s.Replace(specimens, events)
	return s
}

// Replace swaps both collections wholesale (import semantics).
func (s *Store) Replace(specimens []models.Specimen, events []models.CareEvent) {
	s.specimens = append([]models.Specimen(nil), specimens...)
	s.events = make([]models.CareEvent, len(events))
	for i, e := range events {
		s.events[i] = e.Clone()
	}
}

// Specimens returns a copy of the registry in display order.
func (s *Store) Specimens() []models.Specimen {
	return append([]models.Specimen(nil), s.specimens...)
}

// Events returns a copy of the event log in insertion order.
func (s *Store) Events() []models.CareEvent {
	out := make([]models.CareEvent, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// Specimen returns the specimen with the given id.
func (s *Store) Specimen(id string) (models.Specimen, bool) {
	if i := s.specimenIndex(id); i >= 0 {
		return s.specimens[i], true
	}
	return models.Specimen{}, false
}

// Event returns the event with the given id.
func (s *Store) Event(id string) (models.CareEvent, bool) {
	if i := s.eventIndex(id); i >= 0 {
		return s.events[i].Clone(), true
	}
	return models.CareEvent{}, false
}

// AddSpecimen inserts spec at the head of the registry.
func (s *Store) AddSpecimen(spec models.Specimen) {
	s.specimens = append([]models.Specimen{spec}, s.specimens...)
}

// UpsertSpecimen replaces the specimen with the same id in place, or adds it
// at the head when absent.
func (s *Store) UpsertSpecimen(spec models.Specimen) {
	if i := s.specimenIndex(spec.ID); i >= 0 {
		s.specimens[i] = spec
		return
	}
	s.AddSpecimen(spec)
}

// RemoveSpecimen deletes the specimen and every event that references it.
// It reports whether the specimen existed.
func (s *Store) RemoveSpecimen(id string) bool {
	i := s.specimenIndex(id)
	if i < 0 {
		return false
	}
	s.specimens = append(s.specimens[:i:i], s.specimens[i+1:]...)
	kept := s.events[:0]
	for _, e := range s.events {
		if e.SpecimenID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return true
}

// AddEvent appends an event to the log.
func (s *Store) AddEvent(e models.CareEvent) {
	s.events = append(s.events, e.Clone())
}

// AddEvents appends events in the given order.
func (s *Store) AddEvents(events []models.CareEvent) {
	for _, e := range events {
		s.AddEvent(e)
	}
}

// UpdateEvent replaces the event with the same id. It reports whether a
// replacement happened.
func (s *Store) UpdateEvent(e models.CareEvent) bool {
	i := s.eventIndex(e.ID)
	if i < 0 {
		return false
	}
	s.events[i] = e.Clone()
	return true
}

// RemoveEvent deletes the event with the given id. It reports whether the
// event existed.
func (s *Store) RemoveEvent(id string) bool {
	i := s.eventIndex(id)
	if i < 0 {
		return false
	}
	s.events = append(s.events[:i:i], s.events[i+1:]...)
	return true
}

// EventsFor returns the events of a specimen whose date falls in the given
// year and month, sorted as requested.
func (s *Store) EventsFor(specimenID string, year, month int, order Order) []models.CareEvent {
	prefix := models.MonthPrefix(year, month) + "-"
	var out []models.CareEvent
	for _, e := range s.events {
		if e.SpecimenID == specimenID && strings.HasPrefix(e.Date, prefix) {
			out = append(out, e.Clone())
		}
	}
	SortEvents(out, order)
	return out
}

// YearSpan returns the earliest and latest years found in event dates.
// ok is false when no event carries a parseable date.
func (s *Store) YearSpan() (first, last int, ok bool) {
	for _, e := range s.events {
		y, _, valid := e.YearMonth()
		if !valid {
			continue
		}
		if !ok || y < first {
			first = y
		}
		if !ok || y > last {
			last = y
		}
		ok = true
	}
	return first, last, ok
}

// SortEvents orders events in place by their full date. Equal dates keep
// their relative order.
func SortEvents(events []models.CareEvent, order Order) {
	switch order {
	case Ascending:
		sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	case Descending:
		sort.SliceStable(events, func(i, j int) bool { return events[i].Date > events[j].Date })
	}
}

func (s *Store) specimenIndex(id string) int {
	for i, sp := range s.specimens {
		if sp.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) eventIndex(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
