package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for dataset loading and the mining pipeline.
type Metrics struct {
	DatasetLoadsTotal *prometheus.CounterVec
	RunsTotal         *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	Transactions prometheus.Gauge
	Items        prometheus.Gauge
	Itemsets     prometheus.Gauge
	Rules        prometheus.Gauge
}

// NewMetrics creates and registers the metrics once per process, so repeated
// calls (one per Analysis in tests) share the same collectors.
//
// Metrics:
//   - basket_dataset_loads_total{outcome}
//   - basket_mining_runs_total{outcome}
//   - basket_stage_duration_seconds{stage}
//   - basket_cache_hits_total{cache} / basket_cache_misses_total{cache}
//   - basket_transactions, basket_items, basket_itemsets, basket_rules
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			DatasetLoadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "basket_dataset_loads_total",
					Help: "Total number of dataset loads by outcome",
				},
				[]string{"outcome"}, // "ok", "data_format", "error"
			),

			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "basket_mining_runs_total",
					Help: "Total number of mining runs by outcome",
				},
				[]string{"outcome"}, // "ok", "cached", "invalid", "timeout", "cancelled", "invariant", "error"
			),

			StageDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "basket_stage_duration_seconds",
					Help:    "Duration of pipeline stages in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
				},
				[]string{"stage"}, // "load", "itemsets", "rules"
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "basket_cache_hits_total",
					Help: "Total number of session cache hits",
				},
				[]string{"cache"}, // "itemsets", "results"
			),

			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "basket_cache_misses_total",
					Help: "Total number of session cache misses",
				},
				[]string{"cache"},
			),

			Transactions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "basket_transactions",
				Help: "Rows of the current basket matrix",
			}),
			Items: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "basket_items",
				Help: "Columns of the current basket matrix",
			}),
			Itemsets: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "basket_itemsets",
				Help: "Frequent itemsets in the current result",
			}),
			Rules: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "basket_rules",
				Help: "Association rules in the current result",
			}),
		}
	})

	return globalMetrics
}

func (m *Metrics) RecordLoad(outcome string) {
	m.DatasetLoadsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRun(outcome string) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, durationSeconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *Metrics) SetDataset(transactions, items int) {
	m.Transactions.Set(float64(transactions))
	m.Items.Set(float64(items))
}

func (m *Metrics) SetResult(itemsets, rules int) {
	m.Itemsets.Set(float64(itemsets))
	m.Rules.Set(float64(rules))
}
