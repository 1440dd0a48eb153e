package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"basket-dashboard/internal/errors"
	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/observability"
	"basket-dashboard/internal/services"
)

const noResultsHint = "No association rules matched. Lower the support, confidence or lift thresholds."

// Settings carries the request-independent values the handlers need.
type Settings struct {
	Defaults      mining.Thresholds
	MaxUploadSize int64

	// UploadTimeout replaces the server read and write deadlines for dataset
	// uploads. Zero keeps the server's own.
	UploadTimeout time.Duration
}

type APIHandlers struct {
	analysis *services.Analysis
	logger   *slog.Logger
	settings Settings
}

func NewAPIHandlers(analysis *services.Analysis, logger *slog.Logger, settings Settings) *APIHandlers {
	return &APIHandlers{
		analysis: analysis,
		logger:   logger,
		settings: settings,
	}
}

var noCache = map[string]string{
	"Cache-Control": "no-cache",
}

// HandleDataset replaces the dataset with an uploaded CSV, sent either as the
// request body or as the "file" field of a multipart form.
func (h *APIHandlers) HandleDataset(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	h.extendDeadlines(w)
	r.Body = http.MaxBytesReader(w, r.Body, h.settings.MaxUploadSize)

	body, source, err := h.uploadedCSV(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	defer body.Close()

	dataset, err := h.analysis.LoadCSV(r.Context(), body, source)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, dataset)
}

func (h *APIHandlers) extendDeadlines(w http.ResponseWriter) {
	if h.settings.UploadTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(h.settings.UploadTimeout)
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(deadline); err != nil {
		h.logger.Debug("upload read deadline not set", "error", err)
	}
	if err := rc.SetWriteDeadline(deadline); err != nil {
		h.logger.Debug("upload write deadline not set", "error", err)
	}
}

func (h *APIHandlers) uploadedCSV(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "upload", nil
	}

	if err := r.ParseMultipartForm(h.settings.MaxUploadSize); err != nil {
		return nil, "", errors.BadRequestWrap(err, "invalid multipart upload")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.BadRequestWrap(err, `multipart upload must include a "file" field`)
	}
	return file, header.Filename, nil
}

// HandleMine runs the pipeline. Thresholds missing from the JSON body keep
// their configured defaults.
func (h *APIHandlers) HandleMine(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	th := h.settings.Defaults
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&th); err != nil && err != io.EOF {
			errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "request body must be a JSON object of thresholds"), requestID)
			return
		}
	}

	result, err := h.analysis.Mine(r.Context(), th)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccess(w, mineSummary(result))
}

func mineSummary(result *services.Result) map[string]any {
	summary := map[string]any{
		"run_id":          result.RunID,
		"dataset_version": result.DatasetVersion,
		"thresholds":      result.Thresholds,
		"transactions":    result.Transactions,
		"items":           result.Items,
		"itemsets":        len(result.Itemsets),
		"rules":           len(result.Rules),
		"duration_ms":     result.Duration.Milliseconds(),
	}
	if len(result.Rules) == 0 {
		summary["message"] = noResultsHint
	}
	return summary
}

func (h *APIHandlers) HandleItemsets(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analysis.Itemsets(limit), noCache)
}

func (h *APIHandlers) HandleRules(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	q := r.URL.Query()
	rules, err := h.analysis.Rules(q.Get("q"), q.Get("sort"), limit)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, rules, noCache)
}

func (h *APIHandlers) HandleScatter(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analysis.Scatter(), noCache)
}

func (h *APIHandlers) HandleGraph(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	top, err := queryInt(r, "top", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	graph, err := h.analysis.Graph(top, r.URL.Query().Get("sort"))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, graph, noCache)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analysis.Stats()

	errors.WriteSuccess(w, stats)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Validation(fmt.Sprintf("%s must be a non-negative integer, got %q", name, raw))
	}
	return n, nil
}
