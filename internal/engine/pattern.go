package engine

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/temcen/wardrobe/pkg/models"
)

// PatternSeparator joins the tokens of a canonical pattern.
const PatternSeparator = "+"

// CanonicalPattern returns the order-independent pattern key for a set of items:
// one token per item (subCategory, falling back to category), sorted and joined.
func CanonicalPattern(items []models.ClothingItem) string {
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		raw := item.SubCategory
		if strings.TrimSpace(raw) == "" {
			raw = string(item.Category)
		}
		if token := normalizeToken(raw); token != "" {
			tokens = append(tokens, token)
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, PatternSeparator)
}

// CanonicalizePattern rewrites a user supplied pattern string ("jeans+T-Shirt")
// into canonical form so it compares equal to CanonicalPattern output.
func CanonicalizePattern(raw string) (string, error) {
	var tokens []string
	for _, part := range strings.Split(raw, PatternSeparator) {
		if token := normalizeToken(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: %q has no tokens", models.ErrInvalidPattern, raw)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, PatternSeparator), nil
}

func normalizeToken(raw string) string {
	token := strings.ToLower(norm.NFC.String(raw))
	token = strings.ReplaceAll(token, PatternSeparator, " ")
	return strings.Join(strings.Fields(token), "-")
}

// FlagSet is the set of canonical patterns an owner has flagged.
type FlagSet map[string]models.FlaggedPattern

// NewFlagSet canonicalizes stored patterns on load; rows that cannot be canonicalized are skipped.
func NewFlagSet(patterns []models.FlaggedPattern) FlagSet {
	set := make(FlagSet, len(patterns))
	for _, p := range patterns {
		canonical, err := CanonicalizePattern(p.Pattern)
		if err != nil {
			continue
		}
		p.Pattern = canonical
		set[canonical] = p
	}
	return set
}

func (f FlagSet) Contains(pattern string) bool {
	_, ok := f[pattern]
	return ok
}
