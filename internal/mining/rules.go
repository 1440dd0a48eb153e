package mining

import (
	"context"
	"fmt"
	"strings"

	"basket-dashboard/internal/models"
)

// maxPartitionItems bounds the subset enumeration mask.
const maxPartitionItems = 62

// GenerateRules splits every frequent itemset of two or more items into all
// antecedent/consequent partitions and keeps the rules whose confidence and
// lift reach the thresholds.
//
// Supports of both sides are looked up in itemsets. Apriori guarantees every
// subset of a frequent itemset is itself frequent, so a missing or
// non-positive support is reported as ErrInvariantViolation.
func GenerateRules(ctx context.Context, itemsets []models.Itemset, minConfidence, minLift float64) ([]models.Rule, error) {
	if err := validateRuleThresholds(minConfidence, minLift); err != nil {
		return nil, err
	}

	supports := make(map[string]float64, len(itemsets))
	for _, s := range itemsets {
		supports[itemsetKey(s.Items)] = s.Support
	}

	rules := make([]models.Rule, 0)
	for _, s := range itemsets {
		if s.Len() < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate rules: %w", err)
		}
		if s.Len() > maxPartitionItems {
			return nil, fmt.Errorf("%w: itemset of %d items cannot be partitioned", ErrInvariantViolation, s.Len())
		}

		full := uint64(1)<<uint(s.Len()) - 1
		for mask := uint64(1); mask < full; mask++ {
			antecedent, consequent := partition(s.Items, mask)

			antecedentSupport, err := lookupSupport(supports, antecedent)
			if err != nil {
				return nil, err
			}
			consequentSupport, err := lookupSupport(supports, consequent)
			if err != nil {
				return nil, err
			}

			confidence := s.Support / antecedentSupport
			lift := confidence / consequentSupport
			if confidence < minConfidence || lift < minLift {
				continue
			}

			rules = append(rules, models.Rule{
				Antecedent:        antecedent,
				Consequent:        consequent,
				AntecedentSupport: antecedentSupport,
				ConsequentSupport: consequentSupport,
				Support:           s.Support,
				Confidence:        confidence,
				Lift:              lift,
				Leverage:          s.Support - antecedentSupport*consequentSupport,
			})
		}
	}

	return rules, nil
}

// partition puts the items selected by mask on the antecedent side. Both sides
// keep the input order.
func partition(items []string, mask uint64) ([]string, []string) {
	antecedent := make([]string, 0, len(items))
	consequent := make([]string, 0, len(items))
	for i, item := range items {
		if mask&(1<<uint(i)) != 0 {
			antecedent = append(antecedent, item)
		} else {
			consequent = append(consequent, item)
		}
	}
	return antecedent, consequent
}

func lookupSupport(supports map[string]float64, items []string) (float64, error) {
	support, ok := supports[itemsetKey(items)]
	if !ok {
		return 0, fmt.Errorf("%w: support of %v missing from itemset table", ErrInvariantViolation, items)
	}
	if support <= 0 {
		return 0, fmt.Errorf("%w: support of %v is %v", ErrInvariantViolation, items, support)
	}
	return support, nil
}

func itemsetKey(items []string) string {
	return strings.Join(items, "\x00")
}
