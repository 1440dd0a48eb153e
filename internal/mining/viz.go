package mining

import (
	"cmp"
	"slices"

	"basket-dashboard/internal/models"
)

// DefaultGraphRules is how many rules feed the network graph by default.
const DefaultGraphRules = 20

func ScatterPoints(rules []models.Rule) []models.ScatterPoint {
	points := make([]models.ScatterPoint, len(rules))
	for i, r := range rules {
		points[i] = models.ScatterPoint{
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		}
	}
	return points
}

// BuildRuleGraph links every antecedent item to every consequent item of the
// first topN rules, weighted by lift. A pair produced by more than one rule
// keeps the lift of the last such rule. topN <= 0 uses all rules.
func BuildRuleGraph(rules []models.Rule, topN int) models.RuleGraph {
	if topN > 0 && len(rules) > topN {
		rules = rules[:topN]
	}

	type pair struct{ from, to string }
	weights := make(map[pair]float64)
	nodes := make(map[string]struct{})

	for _, r := range rules {
		for _, from := range r.Antecedent {
			for _, to := range r.Consequent {
				weights[pair{from, to}] = r.Lift
				nodes[from] = struct{}{}
				nodes[to] = struct{}{}
			}
		}
	}

	edges := make([]models.GraphEdge, 0, len(weights))
	for p, w := range weights {
		edges = append(edges, models.GraphEdge{From: p.from, To: p.to, Weight: w})
	}
	slices.SortFunc(edges, func(a, b models.GraphEdge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})

	return models.RuleGraph{
		Nodes: sortedKeys(nodes),
		Edges: edges,
	}
}
