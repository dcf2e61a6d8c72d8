package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ClothingItem struct {
	ID             string     `json:"id" db:"id" validate:"required,max=64"`
	OwnerID        uuid.UUID  `json:"owner_id" db:"owner_id"`
	Category       Category   `json:"category" db:"category" validate:"required,oneof=tops bottoms dresses jackets blazers outerwear shoes accessories jewelry swimwear"`
	SubCategory    string     `json:"sub_category,omitempty" db:"sub_category" validate:"max=64"`
	Color          string     `json:"color" db:"color" validate:"required,hexcolor"`
	ColorName      string     `json:"color_name,omitempty" db:"color_name" validate:"max=64"`
	SecondaryColor string     `json:"secondary_color,omitempty" db:"secondary_color" validate:"omitempty,hexcolor"`
	FabricType     Fabric     `json:"fabric_type" db:"fabric_type" validate:"required,oneof=cotton linen silk polyester wool denim leather nylon cashmere satin fleece other"`
	IsOpen         bool       `json:"is_open" db:"is_open"`
	Archived       bool       `json:"archived" db:"archived"`
	WearCount      int        `json:"wear_count" db:"wear_count" validate:"min=0"`
	Favorite       bool       `json:"favorite" db:"favorite"`
	Seasons        []Season   `json:"seasons,omitempty" db:"seasons" validate:"dive,oneof=spring summer fall winter"`
	Occasions      []Occasion `json:"occasions,omitempty" db:"occasions" validate:"dive,oneof=casual work formal party date athletic"`
	PurchasePrice  *float64   `json:"purchase_price,omitempty" db:"purchase_price" validate:"omitempty,min=0"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// CheckInvariants enforces the rules struct tags cannot express.
func (i *ClothingItem) CheckInvariants() error {
	if !i.Category.IsValid() {
		return fmt.Errorf("%w: category %q", ErrInvalidItem, i.Category)
	}
	if !i.FabricType.IsValid() {
		return fmt.Errorf("%w: fabric %q", ErrInvalidItem, i.FabricType)
	}
	if i.IsOpen && !i.Category.IsUpperBody() {
		return fmt.Errorf("%w: is_open is only allowed on upper-body layering pieces, got %s", ErrInvalidItem, i.Category)
	}
	return nil
}

// ItemIDs returns the ids of items in order.
func ItemIDs(items []ClothingItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// ImportReport summarises a wardrobe import.
type ImportReport struct {
	SchemaVersion SchemaVersion     `json:"schema_version"`
	Imported      int               `json:"imported"`
	Rejected      []ImportRejection `json:"rejected,omitempty"`
}

type ImportRejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}
