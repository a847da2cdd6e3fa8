// Package catalog holds the static, read-only reference tables: care types,
// brands and varieties, products, and soil components.
package catalog

import "github.com/starford/rosarium/internal/models"

// Glyph identifies the icon drawn for a care type or product.
type Glyph int

const (
	GlyphUnknown Glyph = iota
	GlyphScissors
	GlyphShovel
	GlyphLayers
	GlyphDroplet
	GlyphCircleDot
	GlyphSparkles
	GlyphBugOff
	GlyphFlower
)

var glyphNames = map[Glyph]string{
	GlyphScissors:  "Scissors",
	GlyphShovel:    "Shovel",
	GlyphLayers:    "Layers",
	GlyphDroplet:   "Droplet",
	GlyphCircleDot: "CircleDot",
	GlyphSparkles:  "Sparkles",
	GlyphBugOff:    "BugOff",
	GlyphFlower:    "Flower2",
}

// Name returns the renderer handle for the glyph. Unknown glyphs map to the
// help icon.
func (g Glyph) Name() string {
	if n, ok := glyphNames[g]; ok {
		return n
	}
	return "HelpCircle"
}

// MarshalText encodes the glyph as its renderer handle.
func (g Glyph) MarshalText() ([]byte, error) {
	return []byte(g.Name()), nil
}

// CareType describes one kind of care activity.
type CareType struct {
	ID    models.CareTypeID `json:"id"`
	Label string            `json:"label"`
	Color string            `json:"color"`
	Glyph Glyph             `json:"glyph"`
}

// careTypes is ordered; the grid lays out type groups in this order.
var careTypes = []CareType{
	{ID: models.CarePruning, Label: "Pruning", Color: "#22c55e", Glyph: GlyphScissors},
	{ID: models.CareRepot, Label: "Repot", Color: "#fb923c", Glyph: GlyphShovel},
	{ID: models.CareSoil, Label: "Soil change", Color: "#a16207", Glyph: GlyphLayers},
	{ID: models.CareLiquid, Label: "Liquid feed", Color: "#a855f7", Glyph: GlyphDroplet},
	{ID: models.CareSolid, Label: "Solid feed", Color: "#3b82f6", Glyph: GlyphCircleDot},
	{ID: models.CareVital, Label: "Vitalizer", Color: "#f472b6", Glyph: GlyphSparkles},
	{ID: models.CarePest, Label: "Pest control", Color: "#facc15", Glyph: GlyphBugOff},
	{ID: models.CareBlooming, Label: "Blooming", Color: "#ef4444", Glyph: GlyphFlower},
}

// FallbackColor is used for events whose type is not in the catalog.
const FallbackColor = "#cccccc"

// CareTypes returns all known care types in display order.
func CareTypes() []CareType {
	return append([]CareType(nil), careTypes...)
}

// CareTypeIDs returns the known care type IDs in display order.
func CareTypeIDs() []models.CareTypeID {
	ids := make([]models.CareTypeID, len(careTypes))
	for i, t := range careTypes {
		ids[i] = t.ID
	}
	return ids
}

// LookupCareType returns the care type with the given ID.
func LookupCareType(id models.CareTypeID) (CareType, bool) {
	for _, t := range careTypes {
		if t.ID == id {
			return t, true
		}
	}
	return CareType{}, false
}

// IsCareType reports whether id names a known care type.
func IsCareType(id models.CareTypeID) bool {
	_, ok := LookupCareType(id)
	return ok
}
