package grid

import (
	"github.com/starford/rosarium/internal/garden"
	"github.com/starford/rosarium/internal/models"
)

// TypeCount is the number of events of one care type.
type TypeCount struct {
	TypeID models.CareTypeID `json:"typeId"`
	Color  string            `json:"color"`
	Count  int               `json:"count"`
}

// Summary is the activity overview behind the dashboard charts.
type Summary struct {
	Year      int         `json:"year"`
	Total     int         `json:"total"`
	Specimens int         `json:"specimens"`
	ByType    []TypeCount `json:"byType"`
	// ByMonth counts the events of Year per month, January first.
	ByMonth [12]int `json:"byMonth"`
}

// Summarize counts events per care type over the whole log and per month
// for year. Events of removed specimens are skipped.
func (p *Projector) Summarize(specimens []models.Specimen, events []models.CareEvent, year int) Summary {
	s := Summary{Year: year, Specimens: len(specimens)}
	live := make(map[string]struct{}, len(specimens))
	for _, spec := range specimens {
		live[spec.ID] = struct{}{}
	}
	counts := make(map[models.CareTypeID]int, len(p.types))
	for _, e := range events {
		if _, ok := live[e.SpecimenID]; !ok {
			continue
		}
		s.Total++
		counts[e.TypeID]++
		if y, m, ok := e.YearMonth(); ok && y == year {
			s.ByMonth[m-1]++
		}
	}
	for _, t := range p.types {
		tc := TypeCount{TypeID: t, Count: counts[t]}
		if ct, ok := p.lookup.CareType(t); ok {
			tc.Color = ct.Color
		}
		s.ByType = append(s.ByType, tc)
	}
	return s
}

// AlbumEntry pairs a photographed event with its specimen.
type AlbumEntry struct {
	Specimen models.Specimen  `json:"specimen"`
	Event    models.CareEvent `json:"event"`
}

// Album lists events that carry before/after photos, newest first. Events
// of removed specimens are skipped.
func Album(specimens []models.Specimen, events []models.CareEvent) []AlbumEntry {
	byID := make(map[string]models.Specimen, len(specimens))
	for _, s := range specimens {
		byID[s.ID] = s
	}
	var photos []models.CareEvent
	for _, e := range events {
		if e.Images.Empty() {
			continue
		}
		if _, ok := byID[e.SpecimenID]; ok {
			photos = append(photos, e)
		}
	}
	garden.SortEvents(photos, garden.Descending)
	out := make([]AlbumEntry, len(photos))
	for i, e := range photos {
		out[i] = AlbumEntry{Specimen: byID[e.SpecimenID], Event: e}
	}
	return out
}
