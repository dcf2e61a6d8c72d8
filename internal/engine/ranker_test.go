package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

func scoredOf(value float64, ids ...string) Scored {
	items := make([]models.ClothingItem, len(ids))
	for i, id := range ids {
		items[i] = models.ClothingItem{ID: id}
	}
	return Scored{Candidate: Candidate{Items: items}, Value: value}
}

func keysOf(scored []Scored) []string {
	keys := make([]string, len(scored))
	for i, s := range scored {
		keys[i] = s.Key()
	}
	return keys
}

func TestRanker_Rank(t *testing.T) {
	cfg := config.DefaultEngineConfig().Ranking

	tests := []struct {
		name       string
		input      []Scored
		maxResults int
		expected   []string
	}{
		{
			name:       "orders by score",
			input:      []Scored{scoredOf(0.2, "a", "b"), scoredOf(0.9, "c", "d"), scoredOf(0.5, "e", "f")},
			maxResults: 10,
			expected:   []string{"c|d", "e|f", "a|b"},
		},
		{
			name:       "ties broken by item key",
			input:      []Scored{scoredOf(0.5, "z", "y"), scoredOf(0.5, "b", "a"), scoredOf(0.5, "m", "n")},
			maxResults: 10,
			expected:   []string{"a|b", "m|n", "y|z"},
		},
		{
			name:       "duplicate item sets collapse",
			input:      []Scored{scoredOf(0.8, "a", "b"), scoredOf(0.8, "b", "a"), scoredOf(0.1, "c", "d")},
			maxResults: 10,
			expected:   []string{"a|b", "c|d"},
		},
		{
			name: "high overlap is skipped",
			input: []Scored{
				scoredOf(0.9, "top", "jeans", "shoes"),
				scoredOf(0.8, "top", "jeans", "shoes", "blazer"), // 3/3 overlap
				scoredOf(0.7, "top", "jeans", "boots"),           // 2/3 overlap
				scoredOf(0.6, "top", "jeans"),                    // 2/2 overlap
			},
			maxResults: 10,
			expected:   []string{"jeans|shoes|top", "boots|jeans|top"},
		},
		{
			name:       "truncates",
			input:      []Scored{scoredOf(0.9, "a", "b"), scoredOf(0.8, "c", "d"), scoredOf(0.7, "e", "f")},
			maxResults: 2,
			expected:   []string{"a|b", "c|d"},
		},
		{
			name:       "excluded never returned",
			input:      []Scored{{Candidate: scoredOf(0, "a", "b").Candidate, Value: 5, Excluded: true}, scoredOf(0.1, "c", "d")},
			maxResults: 10,
			expected:   []string{"c|d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRanker(cfg, testLogger())
			assert.Equal(t, tt.expected, keysOf(r.Rank(tt.input, tt.maxResults)))
		})
	}
}

func TestRanker_DefaultMaxResults(t *testing.T) {
	cfg := config.RankingConfig{MaxOverlap: 1, DefaultMaxResults: 3}
	r := NewRanker(cfg, testLogger())

	var input []Scored
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		input = append(input, scoredOf(0.5, id, "shared"))
	}

	ranked := r.Rank(input, 0)
	require.Len(t, ranked, 3)
	assert.Empty(t, r.Rank(nil, 5))
}

func TestOverlapCoefficient(t *testing.T) {
	set := func(ids ...string) map[string]struct{} { return toSet(ids) }

	assert.InDelta(t, 1.0, overlapCoefficient(set("a", "b"), set("a", "b", "c")), 1e-9)
	assert.InDelta(t, 0.5, overlapCoefficient(set("a", "b"), set("a", "c")), 1e-9)
	assert.InDelta(t, 0.0, overlapCoefficient(set("a"), set("b")), 1e-9)
	assert.InDelta(t, 0.0, overlapCoefficient(set(), set("b")), 1e-9)
}
