// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "inkwell"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	// 业务指标 - 章节树
	TreeRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "rebuild_duration_seconds",
			Help:      "Chapter tree rebuild duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)

	TreeSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "size_chapters",
			Help:      "Number of chapters per rebuilt tree",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
		},
	)

	ChapterMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "chapter_moves_total",
			Help:      "Total number of chapter move attempts",
		},
		[]string{"status"}, // ok/rejected
	)

	// 业务指标 - 版本链
	VersionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revision",
			Name:      "versions_created_total",
			Help:      "Total number of chapter versions created",
		},
		[]string{"kind", "auto_save"}, // kind: snapshot/diff
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "revision",
			Name:      "restore_duration_seconds",
			Help:      "Version content reconstruction duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	RestoreChainLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "revision",
			Name:      "restore_chain_length",
			Help:      "Number of versions replayed per reconstruction",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20},
		},
	)

	VersionsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revision",
			Name:      "versions_pruned_total",
			Help:      "Total number of auto-save versions pruned",
		},
	)

	SnapshotPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revision",
			Name:      "snapshot_promotions_total",
			Help:      "Total number of diff versions promoted to snapshots during pruning",
		},
	)

	DiffDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "diff",
			Name:      "duration_seconds",
			Help:      "Character diff computation duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// 缓存指标
	RestoreCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "restore_requests_total",
			Help:      "Restore cache lookups by outcome",
		},
		[]string{"outcome"}, // hit/miss/error
	)
)
