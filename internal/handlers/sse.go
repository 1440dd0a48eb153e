package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"basket-dashboard/internal/errors"
	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/models"
	"basket-dashboard/internal/services"
)

const (
	maxTableRows = 50
	maxItemsets  = 50

	// signalsParam is the query parameter datastar uses for GET signals.
	signalsParam = "datastar"
)

var templateFuncs = template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}

var itemsetsTableTemplate = template.Must(template.New("itemsetsTable").Funcs(templateFuncs).Parse(`
<div id="itemsets-content">
{{if .Data}}<table class="modern-table">
<thead><tr><th>Itemset</th><th>Size</th><th>Support</th><th>Baskets</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{join .Items}}</td>
<td>{{.Len}}</td>
<td><strong>{{printf "%.4f" .Support}}</strong></td>
<td>{{.Count}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>{{else}}<p class="empty-state">No frequent itemsets. Lower the minimum support.</p>{{end}}
</div>`))

var rulesTableTemplate = template.Must(template.New("rulesTable").Funcs(templateFuncs).Parse(`
<div id="rules-content">
{{if .Data}}<table class="modern-table">
<thead><tr><th>Antecedent</th><th>Consequent</th><th>Support</th><th>Confidence</th><th>Lift</th></tr></thead>
<tbody>
{{range $i, $rule := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{join .Antecedent}}</td>
<td>{{join .Consequent}}</td>
<td>{{printf "%.4f" .Support}}</td>
<td>{{printf "%.3f" .Confidence}}</td>
<td><strong>{{printf "%.3f" .Lift}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>{{else}}<p class="empty-state">{{.Empty}}</p>{{end}}
</div>`))

var statusTemplate = template.Must(template.New("status").Parse(
	`<div id="mine-status" class="status {{.Class}}">{{.Message}}</div>`))

type SSEHandlers struct {
	analysis *services.Analysis
	logger   *slog.Logger
	settings Settings
}

func NewSSEHandlers(analysis *services.Analysis, logger *slog.Logger, settings Settings) *SSEHandlers {
	return &SSEHandlers{
		analysis: analysis,
		logger:   logger,
		settings: settings,
	}
}

type templateData struct {
	Data    any
	MaxRows int
	Empty   string
}

// dashboardSignals mirrors the datastar signals declared on the dashboard.
type dashboardSignals struct {
	MinSupport    float64 `json:"minSupport"`
	MinConfidence float64 `json:"minConfidence"`
	MinLift       float64 `json:"minLift"`
	Query         string  `json:"query"`
	SortBy        string  `json:"sortBy"`
}

func (s dashboardSignals) thresholds() mining.Thresholds {
	return mining.Thresholds{
		MinSupport:    s.MinSupport,
		MinConfidence: s.MinConfidence,
		MinLift:       s.MinLift,
	}
}

func (h *SSEHandlers) defaultSignals() dashboardSignals {
	return dashboardSignals{
		MinSupport:    h.settings.Defaults.MinSupport,
		MinConfidence: h.settings.Defaults.MinConfidence,
		MinLift:       h.settings.Defaults.MinLift,
		SortBy:        string(mining.SortByLift),
	}
}

func (h *SSEHandlers) renderItemsets(itemsets []models.Itemset) (string, error) {
	var buf strings.Builder

	if len(itemsets) > maxTableRows {
		itemsets = itemsets[:maxTableRows]
	}

	err := itemsetsTableTemplate.Execute(&buf, templateData{Data: itemsets, MaxRows: maxTableRows})
	return buf.String(), err
}

func (h *SSEHandlers) renderRules(rules []models.Rule, empty string) (string, error) {
	var buf strings.Builder

	if len(rules) > maxTableRows {
		rules = rules[:maxTableRows]
	}

	err := rulesTableTemplate.Execute(&buf, templateData{Data: rules, MaxRows: maxTableRows, Empty: empty})
	return buf.String(), err
}

func renderStatus(class, message string) string {
	var buf strings.Builder
	if err := statusTemplate.Execute(&buf, map[string]string{"Class": class, "Message": message}); err != nil {
		return `<div id="mine-status" class="status error">render failed</div>`
	}
	return buf.String()
}

// HandleMine reads the threshold signals, runs the pipeline and patches the
// tables, the status line and the chart signals. On failure only the status
// line changes and the previous tables stay in place.
func (h *SSEHandlers) HandleMine(w http.ResponseWriter, r *http.Request) {
	signals := h.defaultSignals()
	readErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	if readErr != nil {
		h.logger.Warn("read dashboard signals", "error", readErr)
		sse.PatchElements(renderStatus("error", "Could not read the threshold controls."))
		sse.PatchSignals([]byte(`{"mining": false}`))
		return
	}

	result, err := h.analysis.Mine(r.Context(), signals.thresholds())
	if err != nil {
		sse.PatchElements(renderStatus("error", userMessage(err)))
		sse.PatchSignals([]byte(`{"mining": false}`))
		return
	}

	h.patchResults(sse, signals)

	status := renderStatus("ok", summaryLine(result))
	if len(result.Rules) == 0 {
		status = renderStatus("empty", noResultsHint)
	}
	sse.PatchElements(status)
}

// HandleFilter re-renders the rule table for the query and sort signals
// without mining again.
func (h *SSEHandlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	signals := h.defaultSignals()
	readErr := datastar.ReadSignals(r, &signals)

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	if readErr != nil {
		h.logger.Warn("read filter signals", "error", readErr)
		sse.PatchElements(renderStatus("error", "Could not read the search box."))
		return
	}

	rules, err := h.analysis.Rules(signals.Query, signals.SortBy, maxTableRows)
	if err != nil {
		sse.PatchElements(renderStatus("error", userMessage(err)))
		return
	}

	html, err := h.renderRules(rules, h.emptyRulesMessage(signals.Query))
	if err != nil {
		h.logger.Error("render rules table", "error", err)
		return
	}
	sse.PatchElements(html)
}

// HandleRefreshAll patches every panel from the current result.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	signals := h.defaultSignals()
	if r.URL.Query().Has(signalsParam) {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			h.logger.Warn("read dashboard signals", "error", err)
		}
	}

	sse := datastar.NewSSE(w, r)
	defer flush(w)

	h.patchResults(sse, signals)

	if result := h.analysis.Current(); result != nil {
		sse.PatchElements(renderStatus("ok", summaryLine(result)))
	} else {
		sse.PatchElements(renderStatus("idle", "Load a dataset and press Mine to compute rules."))
	}
}

func (h *SSEHandlers) patchResults(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	itemsetsHTML, err := h.renderItemsets(h.analysis.Itemsets(maxItemsets))
	if err != nil {
		h.logger.Error("render itemsets table", "error", err)
		return
	}
	sse.PatchElements(itemsetsHTML)

	rules, err := h.analysis.Rules(signals.Query, signals.SortBy, maxTableRows)
	if err != nil {
		rules, _ = h.analysis.Rules(signals.Query, "", maxTableRows)
	}
	rulesHTML, err := h.renderRules(rules, h.emptyRulesMessage(signals.Query))
	if err != nil {
		h.logger.Error("render rules table", "error", err)
		return
	}
	sse.PatchElements(rulesHTML)

	graph, err := h.analysis.Graph(0, signals.SortBy)
	if err != nil {
		graph, _ = h.analysis.Graph(0, "")
	}

	// Send all chart signals in one call
	chartSignals, err := json.Marshal(map[string]any{
		"scatterData": h.analysis.Scatter(),
		"graphData":   graph,
		"mining":      false,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(chartSignals)
}

func (h *SSEHandlers) emptyRulesMessage(query string) string {
	result := h.analysis.Current()
	if strings.TrimSpace(query) != "" && result != nil && len(result.Rules) > 0 {
		return "No rules mention that product."
	}
	return noResultsHint
}

func summaryLine(result *services.Result) string {
	var sb strings.Builder
	sb.WriteString(pluralize(len(result.Itemsets), "frequent itemset"))
	sb.WriteString(", ")
	sb.WriteString(pluralize(len(result.Rules), "rule"))
	sb.WriteString(" from ")
	sb.WriteString(pluralize(result.Transactions, "transaction"))
	return sb.String()
}

func pluralize(n int, noun string) string {
	s := strconv.Itoa(n) + " " + noun
	if n != 1 {
		s += "s"
	}
	return s
}

// userMessage returns the message of an AppError, which is written for end
// users, and a generic text for anything else.
func userMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		if appErr.Details != "" {
			return appErr.Message + ": " + appErr.Details
		}
		return appErr.Message
	}
	return "Something went wrong while mining."
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
