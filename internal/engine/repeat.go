package engine

import (
	"math"
	"time"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

// overlapEpsilon absorbs float error so 7/10 meets a 0.70 threshold.
const overlapEpsilon = 1e-9

// RepeatDetector compares a candidate item set against worn outfit history.
type RepeatDetector struct {
	nearThreshold float64
	now           func() time.Time
}

// NewRepeatDetector takes the clock so day counts are reproducible. A nil clock uses time.Now.
func NewRepeatDetector(cfg config.RepeatConfig, now func() time.Time) *RepeatDetector {
	if now == nil {
		now = time.Now
	}
	return &RepeatDetector{nearThreshold: cfg.NearThreshold, now: now}
}

// Detect reports whether items were already worn together. Only outfits with
// at least one worn date count as history.
func (d *RepeatDetector) Detect(items []models.ClothingItem, history []models.Outfit) models.RepeatResult {
	return d.DetectIDs(models.ItemIDs(items), history, nil)
}

// DetectIDs is Detect over raw ids. When known is non-nil, history ids outside
// it (deleted items) are ignored.
func (d *RepeatDetector) DetectIDs(ids []string, history []models.Outfit, known map[string]struct{}) models.RepeatResult {
	candidate := toSet(ids)
	if len(candidate) == 0 {
		return models.RepeatResult{}
	}

	var (
		exact, near         *models.Outfit
		exactWorn, nearWorn time.Time
		bestOverlap         float64
	)
	for i := range history {
		outfit := &history[i]
		lastWorn, worn := outfit.LastWorn()
		if !worn {
			continue
		}

		hist := make(map[string]struct{}, len(outfit.ItemIDs))
		for _, id := range outfit.ItemIDs {
			if known != nil {
				if _, ok := known[id]; !ok {
					continue
				}
			}
			hist[id] = struct{}{}
		}
		if len(hist) == 0 {
			continue
		}

		shared := intersection(candidate, hist)
		if shared == 0 {
			continue
		}
		if shared == len(candidate) && shared == len(hist) {
			if exact == nil || lastWorn.After(exactWorn) {
				exact, exactWorn = outfit, lastWorn
			}
			continue
		}

		overlap := float64(shared) / float64(max(len(candidate), len(hist)))
		if overlap+overlapEpsilon < d.nearThreshold {
			continue
		}
		if near == nil || overlap > bestOverlap || (overlap == bestOverlap && lastWorn.After(nearWorn)) {
			near, nearWorn, bestOverlap = outfit, lastWorn, overlap
		}
	}

	switch {
	case exact != nil:
		pct := 100
		days := d.daysSince(exactWorn)
		return models.RepeatResult{
			IsRepeat:         true,
			OverlapPct:       &pct,
			RepeatOutfitName: exact.Name,
			DaysSinceWorn:    &days,
		}
	case near != nil:
		pct := int(math.Round(bestOverlap * 100))
		days := d.daysSince(nearWorn)
		return models.RepeatResult{
			NearRepeat:       true,
			OverlapPct:       &pct,
			RepeatOutfitName: near.Name,
			DaysSinceWorn:    &days,
		}
	}
	return models.RepeatResult{}
}

// daysSince counts whole UTC calendar days between the worn date and today.
func (d *RepeatDetector) daysSince(worn time.Time) int {
	days := int(utcDate(d.now()).Sub(utcDate(worn)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func utcDate(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
