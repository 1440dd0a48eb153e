// Package templates renders the dashboard page. Panels start empty and are
// filled by the datastar SSE endpoints.
package templates

//go:generate templ generate

import (
	"encoding/json"

	"basket-dashboard/internal/mining"
)

const defaultTitle = "Market Basket Analysis"

type DashboardProps struct {
	Title      string
	Defaults   mining.Thresholds
	GraphRules int
}

func (p DashboardProps) title() string {
	if p.Title == "" {
		return defaultTitle
	}
	return p.Title
}

// signals seeds the datastar store. Keys match the signals read by the SSE
// handlers. Thresholds are validated before they get here, so marshalling
// only fails on a programming error and the page falls back to an empty store.
func (p DashboardProps) signals() string {
	signals, err := json.Marshal(map[string]any{
		"minSupport":    p.Defaults.MinSupport,
		"minConfidence": p.Defaults.MinConfidence,
		"minLift":       p.Defaults.MinLift,
		"query":         "",
		"sortBy":        string(mining.SortByLift),
		"mining":        false,
		"scatterData":   []any{},
		"graphData":     map[string]any{"nodes": []string{}, "edges": []any{}},
	})
	if err != nil {
		return "{}"
	}
	return string(signals)
}
