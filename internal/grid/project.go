// Package grid projects the garden onto the sheet: one cell per
// (specimen, year, month), with the cell's events grouped by care type.
package grid

import (
	"github.com/starford/rosarium/internal/catalog"
	"github.com/starford/rosarium/internal/garden"
	"github.com/starford/rosarium/internal/models"
)

// Lookup resolves reference data needed for projection.
type Lookup interface {
	Product(id string) (catalog.Product, bool)
	CareType(id models.CareTypeID) (catalog.CareType, bool)
}

// Chip is one event as drawn in a cell or history list.
type Chip struct {
	EventID   string            `json:"eventId"`
	Date      string            `json:"date"`
	Day       int               `json:"day"`
	TypeID    models.CareTypeID `json:"typeId"`
	ProductID string            `json:"productId,omitempty"`
	Color     string            `json:"color"`
	Glyph     catalog.Glyph     `json:"glyph"`
	HasPhotos bool              `json:"hasPhotos,omitempty"`
}

// TypeGroup holds the chips of one care type inside a cell. Types without
// events are present with an empty Chips slice.
type TypeGroup struct {
	TypeID models.CareTypeID `json:"typeId"`
	Chips  []Chip            `json:"chips"`
}

// Cell is the (specimen, year, month) bucket.
type Cell struct {
	Year   int         `json:"year"`
	Month  int         `json:"month"`
	Count  int         `json:"count"`
	Groups []TypeGroup `json:"groups"`
}

// Row is one specimen across every visible month.
type Row struct {
	Specimen     models.Specimen `json:"specimen"`
	BrandDisplay string          `json:"brandDisplay"`
	Cells        []Cell          `json:"cells"`
}

// ViewModel is the full sheet for a window of years.
type ViewModel struct {
	Years []int `json:"years"`
	Rows  []Row `json:"rows"`
}

// Projector turns store contents into a ViewModel.
type Projector struct {
	lookup Lookup
	types  []models.CareTypeID
}

// NewProjector returns a projector grouping by types in the given order.
func NewProjector(lookup Lookup, types []models.CareTypeID) *Projector {
	return &Projector{lookup: lookup, types: append([]models.CareTypeID(nil), types...)}
}

// Default returns a projector over the built-in catalog.
func Default() *Projector {
	return NewProjector(catalog.Catalog{}, catalog.CareTypeIDs())
}

type cellKey struct {
	specimen    string
	year, month int
}

// Project builds the sheet. Events whose specimen is not in specimens, whose
// date is malformed, or whose year is outside years are left out. Inputs are
// not modified.
func (p *Projector) Project(specimens []models.Specimen, events []models.CareEvent, years []int, order garden.Order) ViewModel {
	vm := ViewModel{Years: append([]int{}, years...), Rows: make([]Row, 0, len(specimens))}
	if len(specimens) == 0 {
		return vm
	}

	known := make(map[string]struct{}, len(specimens))
	for _, s := range specimens {
		known[s.ID] = struct{}{}
	}
	visible := make(map[int]struct{}, len(years))
	for _, y := range years {
		visible[y] = struct{}{}
	}

	buckets := make(map[cellKey][]models.CareEvent)
	for _, e := range events {
		if _, ok := known[e.SpecimenID]; !ok {
			continue
		}
		y, m, ok := e.YearMonth()
		if !ok {
			continue
		}
		if _, ok := visible[y]; !ok {
			continue
		}
		k := cellKey{specimen: e.SpecimenID, year: y, month: m}
		buckets[k] = append(buckets[k], e)
	}

	for _, s := range specimens {
		row := Row{
			Specimen:     s,
			BrandDisplay: catalog.DisplayBrand(s.Brand),
			Cells:        make([]Cell, 0, len(years)*12),
		}
		for _, y := range years {
			for m := 1; m <= 12; m++ {
				row.Cells = append(row.Cells, p.Cell(y, m, buckets[cellKey{s.ID, y, m}], order))
			}
		}
		vm.Rows = append(vm.Rows, row)
	}
	return vm
}

// Cell groups the events of one bucket by care type. Events of unknown type
// are dropped.
func (p *Projector) Cell(year, month int, events []models.CareEvent, order garden.Order) Cell {
	sorted := append([]models.CareEvent(nil), events...)
	garden.SortEvents(sorted, order)

	cell := Cell{Year: year, Month: month, Groups: make([]TypeGroup, len(p.types))}
	index := make(map[models.CareTypeID]int, len(p.types))
	for i, t := range p.types {
		cell.Groups[i] = TypeGroup{TypeID: t, Chips: []Chip{}}
		index[t] = i
	}
	for _, e := range sorted {
		i, ok := index[e.TypeID]
		if !ok {
			continue
		}
		chip, ok := p.Chip(e)
		if !ok {
			continue
		}
		cell.Groups[i].Chips = append(cell.Groups[i].Chips, chip)
		cell.Count++
	}
	return cell
}

// Chips renders events as a flat list in the requested order, the way the
// history list shows them.
func (p *Projector) Chips(events []models.CareEvent, order garden.Order) []Chip {
	sorted := append([]models.CareEvent(nil), events...)
	garden.SortEvents(sorted, order)
	out := make([]Chip, 0, len(sorted))
	for _, e := range sorted {
		if c, ok := p.Chip(e); ok {
			out = append(out, c)
		}
	}
	return out
}

// Chip renders one event. ok is false when its care type is unknown.
func (p *Projector) Chip(e models.CareEvent) (Chip, bool) {
	t, ok := p.lookup.CareType(e.TypeID)
	if !ok {
		return Chip{}, false
	}
	return Chip{
		EventID:   e.ID,
		Date:      e.Date,
		Day:       e.Day(),
		TypeID:    e.TypeID,
		ProductID: e.ProductID,
		Color:     p.Color(e),
		Glyph:     t.Glyph,
		HasPhotos: !e.Images.Empty(),
	}, true
}

// Color is the product's color when the event links a known product,
// otherwise the care type's default color.
func (p *Projector) Color(e models.CareEvent) string {
	if e.ProductID != "" {
		if prod, ok := p.lookup.Product(e.ProductID); ok {
			return prod.Color
		}
	}
	if t, ok := p.lookup.CareType(e.TypeID); ok {
		return t.Color
	}
	return catalog.FallbackColor
}
