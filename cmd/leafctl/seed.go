package main

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
)

type plantEnsurer interface {
	EnsurePlant(ctx context.Context, plant *models.Plant) (*models.Plant, bool, error)
}

var starterCatalog = []models.Plant{
	{
		CommonName: "Snake Plant", ScientificName: "Dracaena trifasciata", Family: "Asparagaceae",
		Category: "succulent", Difficulty: "easy",
		Light: "Low to bright indirect light", Water: "Every 2-3 weeks, let soil dry fully",
		Humidity: "Any", Temperature: "15-29°C", Soil: "Cactus or sandy mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Pothos", ScientificName: "Epipremnum aureum", Family: "Araceae",
		Category: "vine", Difficulty: "easy",
		Light: "Medium to bright indirect light", Water: "When the top 5 cm are dry",
		Humidity: "Average", Temperature: "18-29°C", Soil: "Well-draining potting mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Monstera", ScientificName: "Monstera deliciosa", Family: "Araceae",
		Category: "tropical", Difficulty: "medium",
		Light: "Bright indirect light", Water: "Weekly, when the top third is dry",
		Humidity: "60% or higher", Temperature: "18-30°C", Soil: "Chunky aroid mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "ZZ Plant", ScientificName: "Zamioculcas zamiifolia", Family: "Araceae",
		Category: "tropical", Difficulty: "easy",
		Light: "Low to bright indirect light", Water: "Every 2-3 weeks",
		Humidity: "Any", Temperature: "15-26°C", Soil: "Well-draining potting mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Peace Lily", ScientificName: "Spathiphyllum wallisii", Family: "Araceae",
		Category: "flowering", Difficulty: "easy",
		Light: "Low to medium indirect light", Water: "Keep soil lightly moist",
		Humidity: "50% or higher", Temperature: "18-27°C", Soil: "Rich peat-based mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Fiddle Leaf Fig", ScientificName: "Ficus lyrata", Family: "Moraceae",
		Category: "tree", Difficulty: "hard",
		Light: "Bright indirect light, some direct sun", Water: "When the top 5 cm are dry",
		Humidity: "40-60%", Temperature: "18-24°C", Soil: "Well-draining potting mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Spider Plant", ScientificName: "Chlorophytum comosum", Family: "Asparagaceae",
		Category: "foliage", Difficulty: "easy",
		Light: "Bright indirect light", Water: "Weekly",
		Humidity: "Average", Temperature: "13-27°C", Soil: "General potting mix",
		Toxicity: "Non-toxic",
	},
	{
		CommonName: "Aloe Vera", ScientificName: "Aloe barbadensis miller", Family: "Asphodelaceae",
		Category: "succulent", Difficulty: "easy",
		Light: "Bright light, direct sun tolerated", Water: "Every 3 weeks",
		Humidity: "Low", Temperature: "13-27°C", Soil: "Cactus mix",
		Toxicity: "Toxic to cats and dogs",
	},
	{
		CommonName: "Boston Fern", ScientificName: "Nephrolepis exaltata", Family: "Nephrolepidaceae",
		Category: "fern", Difficulty: "medium",
		Light: "Bright indirect light", Water: "Keep soil evenly moist",
		Humidity: "High", Temperature: "16-24°C", Soil: "Peat-rich mix",
		Toxicity: "Non-toxic",
	},
	{
		CommonName: "Calathea", ScientificName: "Goeppertia orbifolia", Family: "Marantaceae",
		Category: "tropical", Difficulty: "hard",
		Light: "Medium indirect light", Water: "Keep soil lightly moist, use filtered water",
		Humidity: "60% or higher", Temperature: "18-27°C", Soil: "Airy peat-based mix",
		Toxicity: "Non-toxic",
	},
}

// seedPlants inserts every starter species that is not in the catalog yet and
// returns how many were created.
func seedPlants(ctx context.Context, plants plantEnsurer) (int, error) {
	created := 0
	for i := range starterCatalog {
		p := starterCatalog[i]
		_, ok, err := plants.EnsurePlant(ctx, &p)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", p.ScientificName, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
