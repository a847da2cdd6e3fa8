package catalog

import "github.com/starford/rosarium/internal/models"

// Product is a commercial care item that an event may reference.
type Product struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Maker  string            `json:"maker"`
	TypeID models.CareTypeID `json:"typeId"`
	Color  string            `json:"color"`
}

var products = []Product{
	{ID: "hyponex-liquid", Name: "Hyponex Liquid", Maker: "Hyponex", TypeID: models.CareLiquid, Color: "#7c3aed"},
	{ID: "rose-liquid", Name: "Rose Liquid Feed", Maker: "Sumitomo", TypeID: models.CareLiquid, Color: "#c084fc"},
	{ID: "biogold-original", Name: "BioGold Original", Maker: "Tanaka", TypeID: models.CareSolid, Color: "#1d4ed8"},
	{ID: "magamp-k", Name: "Magamp K", Maker: "Hyponex", TypeID: models.CareSolid, Color: "#60a5fa"},
	{ID: "menedael", Name: "Menedael", Maker: "Menedael", TypeID: models.CareVital, Color: "#db2777"},
	{ID: "hb101", Name: "HB-101", Maker: "Flora", TypeID: models.CareVital, Color: "#f9a8d4"},
	{ID: "benica-x-next", Name: "Benica X Next", Maker: "Sumitomo", TypeID: models.CarePest, Color: "#ca8a04"},
	{ID: "orthoran-dx", Name: "Orthoran DX", Maker: "Sumitomo", TypeID: models.CarePest, Color: "#fde047"},
	{ID: "rose-soil", Name: "Rose Potting Mix", Maker: "Tanaka", TypeID: models.CareSoil, Color: "#92400e"},
}

// Products returns every product in catalog order.
func Products() []Product {
	return append([]Product(nil), products...)
}

// ProductsFor returns the products that apply to the given care type.
func ProductsFor(typeID models.CareTypeID) []Product {
	var out []Product
	for _, p := range products {
		if p.TypeID == typeID {
			out = append(out, p)
		}
	}
	return out
}

// LookupProduct returns the product with the given ID.
func LookupProduct(id string) (Product, bool) {
	if id == "" {
		return Product{}, false
	}
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// SoilCategory groups soil components.
type SoilCategory string

const (
	SoilBase      SoilCategory = "base"
	SoilAmendment SoilCategory = "amendment"
	SoilPremix    SoilCategory = "mix"
)

// SoilComponent is one ingredient that can appear in a soil mix.
type SoilComponent struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Maker    string       `json:"maker,omitempty"`
	Category SoilCategory `json:"category"`
}

var soils = []SoilComponent{
	{ID: "akadama", Name: "Akadama", Category: SoilBase},
	{ID: "kanuma", Name: "Kanuma", Category: SoilBase},
	{ID: "leaf-mold", Name: "Leaf mold", Category: SoilAmendment},
	{ID: "perlite", Name: "Perlite", Category: SoilAmendment},
	{ID: "bark-compost", Name: "Bark compost", Category: SoilAmendment},
	{ID: "rose-mix-pro", Name: "Rose Soil Pro", Maker: "Tanaka", Category: SoilPremix},
	{ID: "rose-mix-biogold", Name: "BioGold Rose Soil", Maker: "Tanaka", Category: SoilPremix},
}

// SoilComponents returns every soil component in catalog order.
func SoilComponents() []SoilComponent {
	return append([]SoilComponent(nil), soils...)
}

// LookupSoil returns the soil component with the given ID.
func LookupSoil(id string) (SoilComponent, bool) {
	for _, s := range soils {
		if s.ID == id {
			return s, true
		}
	}
	return SoilComponent{}, false
}

// Catalog exposes the package tables behind an injectable value.
type Catalog struct{}

// Product implements product lookup for projection.
func (Catalog) Product(id string) (Product, bool) { return LookupProduct(id) }

// CareType implements care type lookup for projection.
func (Catalog) CareType(id models.CareTypeID) (CareType, bool) { return LookupCareType(id) }
