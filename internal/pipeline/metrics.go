package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"benchopt/internal/events"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by result",
		},
		[]string{"result"},
	)

	validationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "validation_failures_total",
			Help:      "Configuration errors by offending option",
		},
		[]string{"option"},
	)

	warmupInvocationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "warmup_invocations_total",
			Help:      "Model invocations performed during dynamo warm-up",
		},
	)

	compilerResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "compiler_resets_total",
			Help:      "Dynamo compiler resets",
		},
	)

	featureUnavailableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "feature_unavailable_total",
			Help:      "Requested features skipped because the model lacks them",
		},
		[]string{"feature"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "benchopt",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, validationFailuresTotal, warmupInvocationsTotal, compilerResetsTotal, featureUnavailableTotal, stageDuration)
}

// metricsPublisher turns run events into counter increments.
type metricsPublisher struct{}

func (metricsPublisher) Publish(e events.Event) {
	switch e.Name {
	case events.WarmupInvocation:
		warmupInvocationsTotal.Inc()
	case events.CompilerReset:
		compilerResetsTotal.Inc()
	case events.FeatureUnavailable:
		feature, _ := e.Fields["feature"].(string)
		if feature == "" {
			feature = "unspecified"
		}
		featureUnavailableTotal.WithLabelValues(feature).Inc()
	}
}

// WriteMetrics writes every registered metric to path in the Prometheus
// text format, for the node exporter textfile collector.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
