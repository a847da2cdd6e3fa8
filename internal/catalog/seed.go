package catalog

import "github.com/starford/rosarium/internal/models"

// SeedSpecimens returns the starter collection used when no snapshot exists.
func SeedSpecimens() []models.Specimen {
	return []models.Specimen{
		{ID: "1", Name: "La Reine Victoria", Brand: "Old Rose", Year: 1872, AcquisitionDate: "2020-05-01",
			Description: "Bourbon. Deep pink cupped blooms with a rich fragrance."},
		{ID: "2", Name: "Pierre de Ronsard", Brand: "Meilland (France)", Year: 1985, AcquisitionDate: "2019-12-10",
			Description: "Hall of fame climber. Cream petals edged with pink."},
		{ID: "3", Name: "Rose Pompadour", Brand: "Delbard (France)", Year: 2009, AcquisitionDate: "2021-02-15",
			Description: "Vivid pink rosettes with a fruity scent."},
		{ID: "4", Name: "Odysseia", Brand: "Rosa Orientis (Japan)", Year: 2013, AcquisitionDate: "2020-11-20",
			Description: "Dark red wavy petals, reliable summer flowering, spicy scent."},
		{ID: "5", Name: "Rainy Blue", Brand: "Tantau (Germany)", Year: 2012, AcquisitionDate: "2022-03-01",
			Description: "Pale lilac clusters on supple canes."},
		{ID: "6", Name: "Daphne", Brand: "Rosa Orientis (Japan)", Year: 2014, AcquisitionDate: "2021-05-10",
			Description: "Salmon pink fading to green. Very robust."},
		{ID: "7", Name: "Gabriel", Brand: "Kawamoto Rose (Japan)", Year: 2008, AcquisitionDate: "2019-10-15",
			Description: "Pure white with a lavender centre and a strong scent."},
		{ID: "8", Name: "Mary Lennox", Brand: "David Austin (UK)", Year: 2021, AcquisitionDate: "2023-01-20",
			Description: "Pink blooms with old rose charm."},
		{ID: "9", Name: "Iceberg", Brand: "Kordes (Germany)", Year: 1958, AcquisitionDate: "2015-05-05",
			Description: "Pure white floribunda."},
		{ID: "10", Name: "Paul Klee", Brand: "Apple Roses (Japan)", Year: 2014, AcquisitionDate: "2022-04-20",
			Description: "Orange and pink blend with a fruity scent."},
	}
}
