package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionResult is one ranked outfit suggestion.
type SuggestionResult struct {
	Items   []ClothingItem `json:"items"`
	Score   float64        `json:"score"`
	Reasons []string       `json:"reasons"`
	Pattern string         `json:"pattern"`
	Name    string         `json:"name,omitempty"`
}

type SuggestionRequest struct {
	Season     Season   `form:"season" json:"season,omitempty" validate:"omitempty,oneof=spring summer fall winter"`
	Occasion   Occasion `form:"occasion" json:"occasion,omitempty" validate:"omitempty,oneof=casual work formal party date athletic"`
	MaxResults int      `form:"max_results" json:"max_results" validate:"omitempty,min=1,max=50"`
	WithNames  bool     `form:"names" json:"names"`
}

type SuggestionResponse struct {
	OwnerID     uuid.UUID          `json:"owner_id"`
	Suggestions []SuggestionResult `json:"suggestions"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// RepeatResult reports how a candidate overlaps previously worn outfits.
type RepeatResult struct {
	IsRepeat         bool   `json:"is_repeat"`
	NearRepeat       bool   `json:"near_repeat"`
	OverlapPct       *int   `json:"overlap_pct,omitempty"`
	RepeatOutfitName string `json:"repeat_outfit_name,omitempty"`
	DaysSinceWorn    *int   `json:"days_since_worn,omitempty"`
}

type ItemSetRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=12,dive,required"`
}

type FlagRequest struct {
	Pattern string `json:"pattern" validate:"required,max=512"`
	Reason  string `json:"reason" validate:"max=280"`
}

// FlagItemsRequest flags the pattern of a concrete item set instead of a raw pattern string.
type FlagItemsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=2,max=12,dive,required"`
	Reason  string   `json:"reason" validate:"max=280"`
}
