package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func item(id string, category models.Category, sub, color string, fabric models.Fabric) models.ClothingItem {
	return models.ClothingItem{
		ID:          id,
		Category:    category,
		SubCategory: sub,
		Color:       color,
		FabricType:  fabric,
	}
}

// basicCatalog is the four piece wardrobe: white tshirt, blue jeans, black open blazer, white sneakers.
func basicCatalog() []models.ClothingItem {
	blazer := item("blazer", models.CategoryBlazers, "blazer", "#000000", models.FabricWool)
	blazer.IsOpen = true
	return []models.ClothingItem{
		item("tshirt", models.CategoryTops, "tshirt", "#FFFFFF", models.FabricCotton),
		item("jeans", models.CategoryBottoms, "jeans", "#1E3A8A", models.FabricDenim),
		blazer,
		item("sneakers", models.CategoryShoes, "sneakers", "#FFFFFF", models.FabricLeather),
	}
}

func candidateOf(items ...models.ClothingItem) Candidate {
	c := Candidate{Items: items, slots: make([]Slot, len(items))}
	for i, it := range items {
		c.slots[i] = SlotOf(it)
	}
	return c
}

func idSet(items []models.ClothingItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it.ID] = true
	}
	return set
}
