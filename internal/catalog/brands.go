package catalog

import (
	"sort"
	"strings"

	"github.com/starford/rosarium/internal/models"
)

// Brand is a cultivar origin with its known varieties.
type Brand struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Varieties []string `json:"varieties"`
}

var brands = map[string]Brand{
	"David Austin (UK)": {Label: "David Austin (UK)", Varieties: []string{
		"The Ancient Mariner", "Roald Dahl", "Mary Lennox", "Olivia Rose Austin",
		"Boscobel", "Desdemona", "Constance Spry", "Graham Thomas",
	}},
	"Meilland (France)": {Label: "Meilland (France)", Varieties: []string{
		"Pierre de Ronsard", "Bolero", "My Garden", "Mimi Eden", "Papa Meilland",
	}},
	"Delbard (France)": {Label: "Delbard (France)", Varieties: []string{
		"Rose Pompadour", "Naema", "Claude Monet", "La Parisienne", "Chantal Merieux",
	}},
	"Rosa Orientis (Japan)": {Label: "Rosa Orientis (Japan)", Varieties: []string{
		"Odysseia", "Daphne", "Lila", "Rouran", "Scheherazade", "My Rose", "Shalimar", "Luciole",
	}},
	"Kawamoto Rose (Japan)": {Label: "Kawamoto Rose (Japan)", Varieties: []string{
		"Gabriel", "Rose a la Francaise", "Sucre", "Reverie", "Confiture", "Lucifer", "La Mariee",
	}},
	"Apple Roses (Japan)": {Label: "Apple Roses (Japan)", Varieties: []string{
		"Paul Klee", "Mowe",
	}},
	"Tantau (Germany)": {Label: "Tantau (Germany)", Varieties: []string{
		"Rainy Blue", "Nostalgie", "Aschram", "Eisvogel",
	}},
	"Kordes (Germany)": {Label: "Kordes (Germany)", Varieties: []string{
		"Iceberg", "Novalis", "Christiana", "Pomponella",
	}},
	"Old Rose": {Label: "Old Rose / Other", Varieties: []string{
		"La Reine Victoria", "Old Blush Fun Jwan Lo", "Green Ice",
	}},
	"Keisei Rose (Japan)": {Label: "Keisei Rose (Japan)", Varieties: []string{
		"Seika", "Hojun", "Urara", "Shinoburedo", "Kaikyo",
	}},
}

// Brands returns every brand sorted by key.
func Brands() []Brand {
	out := make([]Brand, 0, len(brands))
	for k, b := range brands {
		b.Key = k
		b.Varieties = append([]string(nil), b.Varieties...)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LookupBrand returns the brand registered under key.
func LookupBrand(key string) (Brand, bool) {
	b, ok := brands[key]
	if !ok {
		return Brand{}, false
	}
	b.Key = key
	return b, true
}

// NormalizeBrand returns key unchanged, or the unknown sentinel when empty.
func NormalizeBrand(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.UnknownBrand
	}
	return key
}

// DisplayBrand returns the short label for a brand key: the text before the
// parenthesised country, or the raw key when the brand is not catalogued.
func DisplayBrand(key string) string {
	b, ok := brands[key]
	if !ok {
		return key
	}
	short, _, _ := strings.Cut(b.Label, "(")
	return strings.TrimSpace(short)
}

// VarietyMatch is one autocomplete hit.
type VarietyMatch struct {
	Brand   string `json:"brand"`
	Variety string `json:"variety"`
}

// SearchVarieties returns varieties whose name contains query
// (case-insensitive), ordered by brand key then catalog order. An empty query
// matches nothing.
func SearchVarieties(query string) []VarietyMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []VarietyMatch
	for _, b := range Brands() {
		for _, v := range b.Varieties {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, VarietyMatch{Brand: b.Key, Variety: v})
			}
		}
	}
	return out
}

// FromCatalog pre-fills a specimen from a catalogued variety.
func FromCatalog(brandKey, variety string) (models.Specimen, bool) {
	b, ok := brands[brandKey]
	if !ok {
		return models.Specimen{}, false
	}
	for _, v := range b.Varieties {
		if v == variety {
			return models.Specimen{Name: v, Brand: brandKey}, true
		}
	}
	return models.Specimen{}, false
}
