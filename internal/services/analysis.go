package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	apperrors "basket-dashboard/internal/errors"
	"basket-dashboard/internal/metrics"
	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/models"
	"basket-dashboard/internal/observability"
)

const (
	stageLoad     = "load"
	stageItemsets = "itemsets"
	stageRules    = "rules"

	cacheItemsets = "itemsets"
	cacheResults  = "results"
)

// Result is one completed pipeline run. Values handed out by Analysis are
// shared and must not be modified.
type Result struct {
	RunID          string            `json:"run_id"`
	DatasetVersion uint64            `json:"dataset_version"`
	Thresholds     mining.Thresholds `json:"thresholds"`
	Itemsets       []models.Itemset  `json:"itemsets"`
	Rules          []models.Rule     `json:"rules"`
	Transactions   int               `json:"transactions"`
	Items          int               `json:"items"`
	ComputedAt     time.Time         `json:"computed_at"`
	Duration       time.Duration     `json:"duration_ns"`
}

type Dataset struct {
	Source       string    `json:"source"`
	Version      uint64    `json:"version"`
	Rows         int       `json:"rows"`
	Skipped      int       `json:"skipped"`
	Transactions int       `json:"transactions"`
	Items        int       `json:"items"`
	LoadedAt     time.Time `json:"loaded_at"`
}

type Options struct {
	Timeout    time.Duration
	MaxLength  int
	CacheSize  int
	GraphRules int
}

func DefaultOptions() Options {
	return Options{
		Timeout:    2 * time.Minute,
		CacheSize:  1,
		GraphRules: mining.DefaultGraphRules,
	}
}

// Analysis owns the loaded basket matrix and the latest mining result. Runs
// are serialized; readers keep seeing the previous result until a run
// completes and its result is swapped in.
type Analysis struct {
	mu      sync.RWMutex
	matrix  *mining.Matrix
	dataset Dataset
	current *Result

	runMu sync.Mutex
	cache *sessionCache

	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAnalysis(opts Options, logger *slog.Logger) (*Analysis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.GraphRules <= 0 {
		opts.GraphRules = mining.DefaultGraphRules
	}

	cache, err := newSessionCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}

	return &Analysis{
		matrix:  mining.EmptyMatrix(),
		cache:   cache,
		opts:    opts,
		logger:  logger,
		metrics: metrics.NewMetrics(),
	}, nil
}

func (a *Analysis) LoadFromCSV(ctx context.Context, filename string) (Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		a.metrics.RecordLoad("error")
		return Dataset{}, apperrors.InternalWrap(err, fmt.Sprintf("failed to open %s", filename))
	}
	defer file.Close()

	return a.LoadCSV(ctx, file, filename)
}

// LoadCSV replaces the dataset with the transactions read from r. On any error
// the previous dataset and results are kept.
func (a *Analysis) LoadCSV(ctx context.Context, r io.Reader, source string) (Dataset, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "analysis.load")
	span.SetTag("source", source)
	defer span.End(a.logger)

	records, stats, err := ReadTransactions(ctx, r)
	if err != nil {
		span.SetError(err)
		return Dataset{}, a.loadFailed(source, err)
	}

	ds, err := a.replace(records, stats, source)
	if err != nil {
		span.SetError(err)
		return Dataset{}, err
	}

	duration := time.Since(start)
	a.metrics.ObserveStage(stageLoad, duration.Seconds())
	a.logger.Info("dataset loaded",
		"source", source,
		"rows", stats.Rows,
		"skipped", stats.Skipped,
		"transactions", ds.Transactions,
		"items", ds.Items,
		"version", ds.Version,
		"duration", duration,
		"rows_per_sec", float64(stats.Rows)/max(duration.Seconds(), 1e-9),
	)
	return ds, nil
}

// SetData replaces the dataset with already parsed records.
func (a *Analysis) SetData(records []models.Transaction) error {
	_, err := a.replace(records, LoadStats{Rows: len(records)}, "memory")
	return err
}

func (a *Analysis) replace(records []models.Transaction, stats LoadStats, source string) (Dataset, error) {
	matrix, err := mining.BuildMatrix(records)
	if err != nil {
		return Dataset{}, a.loadFailed(source, err)
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.mu.Lock()
	ds := Dataset{
		Source:       source,
		Version:      a.dataset.Version + 1,
		Rows:         stats.Rows,
		Skipped:      stats.Skipped,
		Transactions: matrix.NumTransactions(),
		Items:        matrix.NumItems(),
		LoadedAt:     time.Now(),
	}
	a.matrix = matrix
	a.dataset = ds
	a.current = nil
	a.mu.Unlock()

	a.cache.purge()
	a.metrics.RecordLoad("ok")
	a.metrics.SetDataset(ds.Transactions, ds.Items)
	a.metrics.SetResult(0, 0)
	return ds, nil
}

func (a *Analysis) loadFailed(source string, err error) error {
	if errors.Is(err, mining.ErrDataFormat) {
		a.metrics.RecordLoad("data_format")
		a.logger.Warn("dataset rejected", "source", source, "error", err)
		return apperrors.DataFormatWrap(err, err.Error())
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		a.metrics.RecordLoad("error")
		return apperrors.BadRequestWrap(err, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
	}

	a.metrics.RecordLoad("error")
	a.logger.Error("dataset load failed", "source", source, "error", err)
	return apperrors.InternalWrap(err, "failed to load dataset")
}

// Mine runs the frequent itemset miner and the rule generator over the
// current dataset as one unit bounded by the configured timeout. A repeated
// call with the same thresholds on the same dataset returns the cached
// result. On error nothing is published and the previous result stays.
func (a *Analysis) Mine(ctx context.Context, th mining.Thresholds) (*Result, error) {
	if err := th.Validate(); err != nil {
		a.metrics.RecordRun("invalid")
		return nil, apperrors.ValidationWrap(err, err.Error())
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.mu.RLock()
	matrix, version := a.matrix, a.dataset.Version
	a.mu.RUnlock()

	key := resultKey{version: version, maxLength: a.opts.MaxLength, thresholds: th}
	if cached, ok := a.cache.results.Get(key); ok {
		a.metrics.RecordCacheHit(cacheResults)
		a.metrics.RecordRun("cached")
		a.publish(cached)
		return cached, nil
	}
	a.metrics.RecordCacheMiss(cacheResults)

	runID := observability.NewID()
	ctx = observability.WithRunID(ctx, runID)
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	logger := a.logger.With(
		"run_id", runID,
		"min_support", th.MinSupport,
		"min_confidence", th.MinConfidence,
		"min_lift", th.MinLift,
	)
	logger.Info("mining started",
		"transactions", matrix.NumTransactions(),
		"items", matrix.NumItems(),
	)

	start := time.Now()

	itemsets, err := a.frequentItemsets(ctx, matrix, version, th.MinSupport)
	if err != nil {
		return nil, a.runFailed(logger, err)
	}

	rules, err := a.associationRules(ctx, itemsets, th)
	if err != nil {
		return nil, a.runFailed(logger, err)
	}

	result := &Result{
		RunID:          runID,
		DatasetVersion: version,
		Thresholds:     th,
		Itemsets:       itemsets,
		Rules:          rules,
		Transactions:   matrix.NumTransactions(),
		Items:          matrix.NumItems(),
		ComputedAt:     time.Now(),
		Duration:       time.Since(start),
	}

	a.cache.results.Add(key, result)
	a.publish(result)
	a.metrics.RecordRun("ok")

	logger.Info("mining completed",
		"itemsets", len(itemsets),
		"rules", len(rules),
		"duration", result.Duration,
	)
	return result, nil
}

func (a *Analysis) frequentItemsets(ctx context.Context, matrix *mining.Matrix, version uint64, minSupport float64) ([]models.Itemset, error) {
	key := itemsetKey{version: version, minSupport: minSupport, maxLength: a.opts.MaxLength}
	if itemsets, ok := a.cache.itemsets.Get(key); ok {
		a.metrics.RecordCacheHit(cacheItemsets)
		return itemsets, nil
	}
	a.metrics.RecordCacheMiss(cacheItemsets)

	ctx, span := observability.StartSpan(ctx, "mining.itemsets")
	defer span.End(a.logger)

	itemsets, err := mining.Mine(ctx, matrix, minSupport, mining.WithMaxLength(a.opts.MaxLength))
	a.metrics.ObserveStage(stageItemsets, time.Since(span.StartTime).Seconds())
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	a.cache.itemsets.Add(key, itemsets)
	return itemsets, nil
}

func (a *Analysis) associationRules(ctx context.Context, itemsets []models.Itemset, th mining.Thresholds) ([]models.Rule, error) {
	ctx, span := observability.StartSpan(ctx, "mining.rules")
	defer span.End(a.logger)

	rules, err := mining.GenerateRules(ctx, itemsets, th.MinConfidence, th.MinLift)
	a.metrics.ObserveStage(stageRules, time.Since(span.StartTime).Seconds())
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return rules, nil
}

func (a *Analysis) runFailed(logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		a.metrics.RecordRun("timeout")
		logger.Warn("mining timed out", "timeout", a.opts.Timeout)
		return apperrors.MiningTimeoutWrap(err, fmt.Sprintf("mining did not finish within %s", a.opts.Timeout))

	case errors.Is(err, context.Canceled):
		a.metrics.RecordRun("cancelled")
		logger.Warn("mining cancelled")
		return apperrors.MiningTimeoutWrap(err, "mining was cancelled")

	case errors.Is(err, mining.ErrInvariantViolation):
		a.metrics.RecordRun("invariant")
		logger.Error("mining invariant violated", "error", err)
		return apperrors.InvariantWrap(err, "rule generation found inconsistent itemset supports")

	case errors.Is(err, mining.ErrInvalidThreshold):
		a.metrics.RecordRun("invalid")
		return apperrors.ValidationWrap(err, err.Error())

	default:
		a.metrics.RecordRun("error")
		logger.Error("mining failed", "error", err)
		return apperrors.InternalWrap(err, "mining failed")
	}
}

func (a *Analysis) publish(result *Result) {
	a.mu.Lock()
	a.current = result
	a.mu.Unlock()

	a.metrics.SetResult(len(result.Itemsets), len(result.Rules))
}

// Current returns the latest published result, or nil before the first run
// on the current dataset.
func (a *Analysis) Current() *Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

func (a *Analysis) Dataset() Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

func (a *Analysis) Matrix() *mining.Matrix {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.matrix
}

// Itemsets returns the current frequent itemsets by support, descending.
// A non-positive limit returns all of them.
func (a *Analysis) Itemsets(limit int) []models.Itemset {
	result := a.Current()
	if result == nil {
		return []models.Itemset{}
	}
	return truncate(mining.SortItemsets(result.Itemsets), limit)
}

// Rules sorts the current rules by sortBy (lift when empty), keeps those with
// an item containing query and returns at most limit of them.
func (a *Analysis) Rules(query, sortBy string, limit int) ([]models.Rule, error) {
	key, err := mining.ParseSortKey(sortBy, mining.SortByLift)
	if err != nil {
		return nil, apperrors.ValidationWrap(err, err.Error())
	}

	result := a.Current()
	if result == nil {
		return []models.Rule{}, nil
	}

	sorted, err := mining.SortRules(result.Rules, key)
	if err != nil {
		return nil, apperrors.ValidationWrap(err, err.Error())
	}
	return truncate(mining.FilterRules(sorted, query), limit), nil
}

func (a *Analysis) Scatter() []models.ScatterPoint {
	result := a.Current()
	if result == nil {
		return []models.ScatterPoint{}
	}
	return mining.ScatterPoints(result.Rules)
}

// Graph builds the rule network from the first topN rules in sortBy order.
// A non-positive topN uses the configured default.
func (a *Analysis) Graph(topN int, sortBy string) (models.RuleGraph, error) {
	if topN <= 0 {
		topN = a.opts.GraphRules
	}

	rules, err := a.Rules("", sortBy, topN)
	if err != nil {
		return models.RuleGraph{}, err
	}
	return mining.BuildRuleGraph(rules, topN), nil
}

func (a *Analysis) Stats() map[string]any {
	ds := a.Dataset()
	stats := map[string]any{
		"source":          ds.Source,
		"dataset_version": ds.Version,
		"record_count":    ds.Rows,
		"skipped_rows":    ds.Skipped,
		"transactions":    ds.Transactions,
		"items":           ds.Items,
		"cached_itemsets": a.cache.itemsets.Len(),
		"cached_results":  a.cache.results.Len(),
	}
	if !ds.LoadedAt.IsZero() {
		stats["loaded_at"] = ds.LoadedAt.Format(time.RFC3339)
	}

	if result := a.Current(); result != nil {
		stats["run_id"] = result.RunID
		stats["thresholds"] = result.Thresholds
		stats["itemsets"] = len(result.Itemsets)
		stats["rules"] = len(result.Rules)
		stats["computed_at"] = result.ComputedAt.Format(time.RFC3339)
		stats["duration_ms"] = result.Duration.Milliseconds()
	}

	return stats
}

func truncate[T any](values []T, limit int) []T {
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}
