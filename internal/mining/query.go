package mining

import (
	"strings"

	"basket-dashboard/internal/models"
)

// FilterRules keeps the rules where query occurs, case-insensitively, in any
// antecedent or consequent item name. A blank query returns rules unchanged.
func FilterRules(rules []models.Rule, query string) []models.Rule {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rules
	}

	filtered := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if anyContains(r.Antecedent, q) || anyContains(r.Consequent, q) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func anyContains(items []string, lowered string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), lowered) {
			return true
		}
	}
	return false
}
