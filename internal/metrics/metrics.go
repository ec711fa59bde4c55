// Package metrics defines the engine's Prometheus metrics. All metrics
// use the "topolink_" namespace.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "topolink"

var (
	// PollCycleDuration tracks full poll-cycle wall time.
	PollCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_cycle_duration_seconds",
		Help:      "Duration of one full poller cycle across every configured switch.",
		Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128},
	})

	// PollPoolSize is the current adaptive worker-pool size.
	PollPoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "poll_pool_size",
		Help:      "Current size of the poller's adaptive per-cycle worker pool.",
	})

	// SwitchesOnline is a gauge of switches that reported ONLINE in the
	// most recent cycle.
	SwitchesOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "switches_online",
		Help:      "Number of managed switches that reported ONLINE in the most recent poll cycle.",
	})

	// SwitchPollResults counts per-switch poll outcomes by result.
	SwitchPollResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "switch_poll_results_total",
		Help:      "Total per-switch poll outcomes, by result (online, offline, strategy_failed).",
	}, []string{"result"})

	// TopologyInferenceResults counts topology inference outcomes.
	TopologyInferenceResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "topology_inference_results_total",
		Help:      "Total topology inference runs, by result (ok, ambiguous, max_depth).",
	}, []string{"result"})

	// FlowCuratorTickErrors counts flow-curator tick failures in total.
	FlowCuratorTickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_curator_tick_errors_total",
		Help:      "Total flow curator ticks that failed.",
	})

	// FlowCuratorRowsClassified counts curated rows written, by table.
	FlowCuratorRowsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_curator_rows_classified_total",
		Help:      "Total raw flow rows classified into a curated table.",
	}, []string{"table"})

	// NameResolverScans counts name-resolver scan outcomes.
	NameResolverScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "name_resolver_scans_total",
		Help:      "Total external name-scanner invocations, by result (ok, failed).",
	}, []string{"result"})
)
