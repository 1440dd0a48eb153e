package mining

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"basket-dashboard/internal/models"
)

type SortKey string

const (
	SortBySupport    SortKey = "support"
	SortByConfidence SortKey = "confidence"
	SortByLift       SortKey = "lift"
)

// ParseSortKey accepts support, confidence or lift in any case. An empty
// string selects fallback.
func ParseSortKey(s string, fallback SortKey) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case "":
		return fallback, nil
	case SortBySupport, SortByConfidence, SortByLift:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q, must be one of support, confidence, lift", ErrInvalidSortKey, s)
	}
}

// SortRules returns a copy of rules ordered by key, descending. Ties keep
// their input order.
func SortRules(rules []models.Rule, key SortKey) ([]models.Rule, error) {
	metric, err := ruleMetric(key)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b models.Rule) int {
		return cmp.Compare(metric(b), metric(a))
	})
	return sorted, nil
}

// SortItemsets returns a copy ordered by support, descending. Ties keep the
// miner's size-then-lexicographic order.
func SortItemsets(itemsets []models.Itemset) []models.Itemset {
	sorted := slices.Clone(itemsets)
	slices.SortStableFunc(sorted, func(a, b models.Itemset) int {
		return cmp.Compare(b.Support, a.Support)
	})
	return sorted
}

func ruleMetric(key SortKey) (func(models.Rule) float64, error) {
	switch key {
	case SortBySupport:
		return func(r models.Rule) float64 { return r.Support }, nil
	case SortByConfidence:
		return func(r models.Rule) float64 { return r.Confidence }, nil
	case SortByLift:
		return func(r models.Rule) float64 { return r.Lift }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
}
