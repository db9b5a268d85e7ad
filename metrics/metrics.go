// Package metrics 是引擎的 Prometheus 指标，注册在默认 Registry 上。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests 按模式（fused / cold_start / strategy / similar / mood）计数
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_recommend_results",
			Help:    "Number of items returned per request",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// ScorerFailures 按策略与原因（not_found / unavailable / error）计数
	ScorerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_scorer_failures_total",
			Help: "Total number of scorer failures during fusion, by strategy and reason",
		},
		[]string{"strategy", "reason"},
	)

	// NodeDuration 按阶段与 Node 名称记录 Pipeline 中每个 Node 的耗时
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_pipeline_node_duration_seconds",
			Help:    "Duration of a single pipeline node in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"kind", "node"},
	)

	// FilteredItems 按过滤器统计被移除的候选数量
	FilteredItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_filtered_items_total",
			Help: "Total number of candidates removed, by filter",
		},
		[]string{"filter"},
	)

	RetrainTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_retrain_total",
			Help: "Total number of snapshot rebuilds by result",
		},
		[]string{"result"},
	)

	RetrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_retrain_duration_seconds",
			Help:    "Duration of snapshot rebuilds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_snapshot_version",
			Help: "Version of the scoring snapshot currently serving",
		},
	)

	// SnapshotSize 按实体（books / ratings / users / mood_books）
	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookrec_snapshot_entities",
			Help: "Number of entities in the serving snapshot",
		},
		[]string{"entity"},
	)
)

// ObserveRequest 记录一次请求。
func ObserveRequest(mode string, start time.Time, results int) {
	RecommendRequests.WithLabelValues(mode).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	RecommendResults.Observe(float64(results))
}

// ObserveRetrain 记录一次快照重建。
func ObserveRetrain(start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	RetrainTotal.WithLabelValues(result).Inc()
	RetrainDuration.Observe(time.Since(start).Seconds())
}

// ObserveNode 记录一个 Pipeline Node 的耗时。
func ObserveNode(kind, node string, elapsed time.Duration) {
	NodeDuration.WithLabelValues(kind, node).Observe(elapsed.Seconds())
}
