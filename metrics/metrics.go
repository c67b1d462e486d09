// Package metrics 提供推荐引擎的 Prometheus 指标。
//
// 指标注册在调用方传入的 Registerer 上，同一进程可以为不同引擎实例使用独立的注册表。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/winerec/core"
)

const namespace = "winerec"

// Metrics 是一组引擎指标。nil *Metrics 上的所有方法都是空操作。
type Metrics struct {
	Interactions     *prometheus.CounterVec
	ViewRequests     *prometheus.CounterVec
	ViewDuration     *prometheus.HistogramVec
	ViewResults      *prometheus.HistogramVec
	CatalogLoads     *prometheus.CounterVec
	CatalogLoadTime  prometheus.Histogram
	CatalogSize      prometheus.Gauge
	PersistenceError *prometheus.CounterVec
}

// New 在 reg 上注册全部指标；reg 为 nil 时使用 prometheus.DefaultRegisterer。
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Interactions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Total number of interactions by kind and outcome (recorded, ignored)",
			},
			[]string{"kind", "outcome"},
		),
		ViewRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_requests_total",
				Help:      "Total number of recommendation view queries",
			},
			[]string{"view"},
		),
		ViewDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_duration_seconds",
				Help:      "Duration of recommendation view queries in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"view"},
		),
		ViewResults: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_results",
				Help:      "Number of items returned by recommendation views",
				Buckets:   []float64{0, 1, 5, 10, 20, 50},
			},
			[]string{"view"},
		),
		CatalogLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_loads_total",
				Help:      "Total number of catalog loads by result (success, error)",
			},
			[]string{"result"},
		),
		CatalogLoadTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_load_duration_seconds",
				Help:      "Duration of catalog fetches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CatalogSize: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_items",
				Help:      "Number of wines in the current catalog snapshot",
			},
		),
		PersistenceError: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_errors_total",
				Help:      "Total number of persistence failures by operation (read, write)",
			},
			[]string{"op"},
		),
	}
}

// ObserveCatalogLoad 实现 catalog.LoadObserver。
func (m *Metrics) ObserveCatalogLoad(size int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.CatalogLoadTime.Observe(d.Seconds())
	if err != nil {
		m.CatalogLoads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogLoads.WithLabelValues("success").Inc()
	m.CatalogSize.Set(float64(size))
}

// RecordInteraction 记录一次行为，recorded 为 false 表示因酒款未知被忽略。
func (m *Metrics) RecordInteraction(kind core.InteractionKind, recorded bool) {
	if m == nil {
		return
	}
	outcome := "recorded"
	if !recorded {
		outcome = "ignored"
	}
	m.Interactions.WithLabelValues(string(kind), outcome).Inc()
}

// RecordView 记录一次视图查询。
func (m *Metrics) RecordView(view string, d time.Duration, results int) {
	if m == nil {
		return
	}
	m.ViewRequests.WithLabelValues(view).Inc()
	m.ViewDuration.WithLabelValues(view).Observe(d.Seconds())
	m.ViewResults.WithLabelValues(view).Observe(float64(results))
}

// RecordPersistenceError 记录一次持久化失败，op 为 "read" 或 "write"。
func (m *Metrics) RecordPersistenceError(op string) {
	if m == nil {
		return
	}
	m.PersistenceError.WithLabelValues(op).Inc()
}
