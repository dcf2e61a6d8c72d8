package engine

import "github.com/temcen/wardrobe/pkg/models"

// Slot is the structural role an item fills in an outfit.
type Slot int

const (
	SlotNone Slot = iota
	SlotBaseTop
	SlotLayer
	SlotBottom
	SlotDress
	SlotShoes
	SlotAccessory
)

func (s Slot) String() string {
	switch s {
	case SlotBaseTop:
		return "base_top"
	case SlotLayer:
		return "layer"
	case SlotBottom:
		return "bottom"
	case SlotDress:
		return "dress"
	case SlotShoes:
		return "shoes"
	case SlotAccessory:
		return "accessory"
	default:
		return "none"
	}
}

// SlotOf maps an item onto its slot. Swimwear and unknown categories are never suggested.
func SlotOf(item models.ClothingItem) Slot {
	switch item.Category {
	case models.CategoryTops:
		if item.IsOpen {
			return SlotLayer
		}
		return SlotBaseTop
	case models.CategoryJackets, models.CategoryBlazers, models.CategoryOuterwear:
		return SlotLayer
	case models.CategoryBottoms:
		return SlotBottom
	case models.CategoryDresses:
		return SlotDress
	case models.CategoryShoes:
		return SlotShoes
	case models.CategoryAccessories, models.CategoryJewelry:
		return SlotAccessory
	default:
		return SlotNone
	}
}

// isGarment reports whether the slot takes part in fabric pairing.
func (s Slot) isGarment() bool {
	switch s {
	case SlotBaseTop, SlotLayer, SlotBottom, SlotDress:
		return true
	}
	return false
}
