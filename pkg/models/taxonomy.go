package models

import (
	"fmt"
	"strings"
)

// SchemaVersion identifies the catalog schema a category string was written under.
type SchemaVersion int

const (
	// SchemaV1 used singular category names and had no jacket/blazer/jewelry split.
	SchemaV1 SchemaVersion = 1
	// SchemaV2 is the current closed category set.
	SchemaV2 SchemaVersion = 2

	CurrentSchemaVersion = SchemaV2
)

type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryDresses     Category = "dresses"
	CategoryJackets     Category = "jackets"
	CategoryBlazers     Category = "blazers"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryJewelry     Category = "jewelry"
	CategorySwimwear    Category = "swimwear"
)

// AllCategories lists the closed v2 category set.
var AllCategories = []Category{
	CategoryTops, CategoryBottoms, CategoryDresses, CategoryJackets, CategoryBlazers,
	CategoryOuterwear, CategoryShoes, CategoryAccessories, CategoryJewelry, CategorySwimwear,
}

// legacyCategories maps every category spelling accepted by a schema version onto the v2 set.
var legacyCategories = map[SchemaVersion]map[string]Category{
	SchemaV1: {
		"top":       CategoryTops,
		"bottom":    CategoryBottoms,
		"dress":     CategoryDresses,
		"outerwear": CategoryOuterwear,
		"jacket":    CategoryJackets,
		"shoe":      CategoryShoes,
		"accessory": CategoryAccessories,
		"swimwear":  CategorySwimwear,
	},
	SchemaV2: {
		"tops":        CategoryTops,
		"bottoms":     CategoryBottoms,
		"dresses":     CategoryDresses,
		"jackets":     CategoryJackets,
		"blazers":     CategoryBlazers,
		"outerwear":   CategoryOuterwear,
		"shoes":       CategoryShoes,
		"accessories": CategoryAccessories,
		"jewelry":     CategoryJewelry,
		"swimwear":    CategorySwimwear,
	},
}

// ParseCategory resolves a raw category string written under the given schema version.
func ParseCategory(version SchemaVersion, raw string) (Category, error) {
	table, ok := legacyCategories[version]
	if !ok {
		return "", fmt.Errorf("%w: unknown schema version %d", ErrInvalidItem, version)
	}
	category, ok := table[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q for schema v%d", ErrInvalidItem, raw, version)
	}
	return category, nil
}

func (c Category) IsValid() bool {
	_, ok := legacyCategories[CurrentSchemaVersion][string(c)]
	return ok
}

// IsUpperBody reports whether items of this category may be worn open over another top.
func (c Category) IsUpperBody() bool {
	switch c {
	case CategoryTops, CategoryJackets, CategoryBlazers, CategoryOuterwear:
		return true
	}
	return false
}

type Fabric string

const (
	FabricCotton    Fabric = "cotton"
	FabricLinen     Fabric = "linen"
	FabricSilk      Fabric = "silk"
	FabricPolyester Fabric = "polyester"
	FabricWool      Fabric = "wool"
	FabricDenim     Fabric = "denim"
	FabricLeather   Fabric = "leather"
	FabricNylon     Fabric = "nylon"
	FabricCashmere  Fabric = "cashmere"
	FabricSatin     Fabric = "satin"
	FabricFleece    Fabric = "fleece"
	FabricOther     Fabric = "other"
)

func (f Fabric) IsValid() bool {
	switch f {
	case FabricCotton, FabricLinen, FabricSilk, FabricPolyester, FabricWool, FabricDenim,
		FabricLeather, FabricNylon, FabricCashmere, FabricSatin, FabricFleece, FabricOther:
		return true
	}
	return false
}

// IsHeavy reports whether the fabric is a warm, heavyweight one.
func (f Fabric) IsHeavy() bool {
	switch f {
	case FabricWool, FabricCashmere, FabricFleece, FabricLeather:
		return true
	}
	return false
}

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

func (s Season) IsValid() bool {
	switch s {
	case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
		return true
	}
	return false
}

type Occasion string

const (
	OccasionCasual   Occasion = "casual"
	OccasionWork     Occasion = "work"
	OccasionFormal   Occasion = "formal"
	OccasionParty    Occasion = "party"
	OccasionDate     Occasion = "date"
	OccasionAthletic Occasion = "athletic"
)

func (o Occasion) IsValid() bool {
	switch o {
	case OccasionCasual, OccasionWork, OccasionFormal, OccasionParty, OccasionDate, OccasionAthletic:
		return true
	}
	return false
}
