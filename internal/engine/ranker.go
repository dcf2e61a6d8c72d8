package engine

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
)

// Ranker orders scored candidates and keeps the returned list diverse.
type Ranker struct {
	cfg    config.RankingConfig
	logger *logrus.Logger
}

// NewRanker creates a new ranker
func NewRanker(cfg config.RankingConfig, logger *logrus.Logger) *Ranker {
	return &Ranker{cfg: cfg, logger: logger}
}

// Rank sorts by score (ties broken by item-id key), drops duplicate item sets
// and greedily skips candidates that overlap an accepted one by more than
// MaxOverlap. Excluded candidates never reach the output.
func (r *Ranker) Rank(scored []Scored, maxResults int) []Scored {
	if maxResults <= 0 {
		maxResults = r.cfg.DefaultMaxResults
	}
	if len(scored) == 0 || maxResults <= 0 {
		return nil
	}

	ordered := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if !s.Excluded {
			ordered = append(ordered, s)
		}
	}

	keys := make(map[int]string, len(ordered))
	for i := range ordered {
		keys[i] = ordered[i].Key()
	}
	idx := make([]int, len(ordered))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := ordered[idx[a]], ordered[idx[b]]
		if sa.Value != sb.Value {
			return sa.Value > sb.Value
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	seen := make(map[string]struct{}, len(ordered))
	var selected []Scored
	var selectedSets []map[string]struct{}
	for _, i := range idx {
		candidate := ordered[i]
		if _, dup := seen[keys[i]]; dup {
			continue
		}
		seen[keys[i]] = struct{}{}

		set := toSet(candidate.IDs())
		if r.tooSimilar(set, selectedSets) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{
					"pattern": candidate.Pattern,
					"score":   candidate.Value,
				}).Debug("Skipping candidate due to high overlap")
			}
			continue
		}

		selected = append(selected, candidate)
		selectedSets = append(selectedSets, set)
		if len(selected) == maxResults {
			break
		}
	}
	return selected
}

func (r *Ranker) tooSimilar(set map[string]struct{}, accepted []map[string]struct{}) bool {
	if r.cfg.MaxOverlap >= 1 {
		return false
	}
	for _, other := range accepted {
		if overlapCoefficient(set, other) > r.cfg.MaxOverlap {
			return true
		}
	}
	return false
}

// overlapCoefficient is |A∩B| / min(|A|,|B|).
func overlapCoefficient(a, b map[string]struct{}) float64 {
	smaller := min(len(a), len(b))
	if smaller == 0 {
		return 0
	}
	return float64(intersection(a, b)) / float64(smaller)
}
