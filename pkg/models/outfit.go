package models

import (
	"time"

	"github.com/google/uuid"
)

// Outfit is a saved combination of items. WornDates is append-only.
type Outfit struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	OwnerID    uuid.UUID   `json:"owner_id" db:"owner_id"`
	Name       string      `json:"name" db:"name"`
	ItemIDs    []string    `json:"item_ids" db:"item_ids"`
	Occasions  []Occasion  `json:"occasions,omitempty" db:"occasions"`
	Seasons    []Season    `json:"seasons,omitempty" db:"seasons"`
	Rating     int         `json:"rating,omitempty" db:"rating"` // 0 = unrated
	WornDates  []time.Time `json:"worn_dates,omitempty" db:"worn_dates"`
	Suggested  bool        `json:"suggested" db:"suggested"`
	NameLocked bool        `json:"name_locked" db:"name_locked"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// LastWorn returns the most recent worn date, or false if the outfit was never worn.
func (o *Outfit) LastWorn() (time.Time, bool) {
	var last time.Time
	for _, d := range o.WornDates {
		if d.After(last) {
			last = d
		}
	}
	return last, !last.IsZero()
}

// RatedOutfit is the rating signal fed to the scorer.
type RatedOutfit struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
	Rating  int      `json:"rating" validate:"min=1,max=5"`
}

// RatedOutfits extracts the rating signal from outfit history, skipping unrated outfits.
func RatedOutfits(history []Outfit) []RatedOutfit {
	var rated []RatedOutfit
	for _, o := range history {
		if o.Rating < 1 || o.Rating > 5 || len(o.ItemIDs) == 0 {
			continue
		}
		rated = append(rated, RatedOutfit{ItemIDs: o.ItemIDs, Rating: o.Rating})
	}
	return rated
}

// FlaggedPattern suppresses every future candidate whose canonical pattern equals Pattern.
type FlaggedPattern struct {
	Pattern   string    `json:"pattern" db:"pattern"`
	Reason    string    `json:"reason" db:"reason"`
	FlaggedAt time.Time `json:"flagged_at" db:"flagged_at"`
}

type SaveOutfitRequest struct {
	Name      string     `json:"name,omitempty" validate:"max=120"`
	ItemIDs   []string   `json:"item_ids" validate:"required,min=1,max=12,dive,required"`
	Occasions []Occasion `json:"occasions,omitempty" validate:"dive,oneof=casual work formal party date athletic"`
	Seasons   []Season   `json:"seasons,omitempty" validate:"dive,oneof=spring summer fall winter"`
	Suggested bool       `json:"suggested"`
}

type LogWornRequest struct {
	Date *time.Time `json:"date,omitempty"`
}

type RateOutfitRequest struct {
	Rating int `json:"rating" validate:"min=1,max=5"`
}

type RenameOutfitRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}
