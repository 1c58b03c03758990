// Package metrics provides the Prometheus registry for the prop pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nba_props"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PropositionsEvaluatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "propositions_evaluated_total",
		Help:      "Total number of proposition skeletons evaluated, by outcome",
	}, []string{"outcome"})
	CombinationsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "combinations_generated_total",
		Help:      "Total number of combinations scored",
	})
	CombinationsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "combinations_rejected_total",
		Help:      "Total number of ranked combinations rejected during selection, by reason",
	}, []string{"reason"})
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs, by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	PortfolioSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_size",
		Help:      "Number of parlays selected by the latest run",
	})
	ProfitablePropositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "profitable_propositions",
		Help:      "Number of scored propositions with positive expected value in the latest run, before filtering",
	})
)

// Histogram metrics
var (
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of full pipeline runs in seconds",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PropositionsEvaluatedTotal)
		registry.MustRegister(CombinationsGeneratedTotal)
		registry.MustRegister(CombinationsRejectedTotal)
		registry.MustRegister(PipelineRunsTotal)

		registry.MustRegister(PortfolioSize)
		registry.MustRegister(ProfitablePropositions)

		registry.MustRegister(PipelineDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluations records how many skeletons were scored and how many failed.
func RecordEvaluations(scored, failed int) {
	PropositionsEvaluatedTotal.WithLabelValues("scored").Add(float64(scored))
	PropositionsEvaluatedTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordCombinations records the number of combinations scored in one run.
func RecordCombinations(count int) {
	CombinationsGeneratedTotal.Add(float64(count))
}

// RecordRejections records selection rejections keyed by reason.
func RecordRejections(rejections map[string]int) {
	for reason, count := range rejections {
		CombinationsRejectedTotal.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordPipelineRun records a completed or failed run and its duration.
func RecordPipelineRun(status string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineDuration.Observe(durationSeconds)
}

// UpdatePortfolioSize sets the portfolio size gauge.
func UpdatePortfolioSize(size int) {
	PortfolioSize.Set(float64(size))
}

// UpdateProfitablePropositions sets the profitable propositions gauge.
func UpdateProfitablePropositions(count int) {
	ProfitablePropositions.Set(float64(count))
}
