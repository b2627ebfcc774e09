package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "trac2md"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry          *prom.Registry
	transformDuration *prom.HistogramVec
	transformResults  *prom.CounterVec
	pageOutcomes      *prom.CounterVec
	warnings          *prom.CounterVec
	attachmentCopies  *prom.CounterVec
	runDuration       prom.Histogram
	runOutcomes       *prom.CounterVec
	lastRun           prom.Gauge
}

// NewPrometheusRecorder constructs and registers the conversion metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Duration of individual conversion transforms",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"transform"}),
		transformResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "transform_results_total",
			Help:      "Transform result counts by outcome",
		}, []string{"transform", "result"}),
		pageOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Converted pages by outcome",
		}, []string{"outcome"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Conversion warnings by kind",
		}, []string{"kind"}),
		attachmentCopies: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_copies_total",
			Help:      "Attachment copies by success/failure",
		}, []string{"result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(pr.transformDuration, pr.transformResults, pr.pageOutcomes, pr.warnings,
		pr.attachmentCopies, pr.runDuration, pr.runOutcomes, pr.lastRun)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveTransformDuration(transform string, d time.Duration) {
	if p == nil {
		return
	}
	p.transformDuration.WithLabelValues(transform).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransformResult(transform string, result ResultLabel) {
	if p == nil {
		return
	}
	p.transformResults.WithLabelValues(transform, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPageOutcome(outcome PageOutcome) {
	if p == nil {
		return
	}
	p.pageOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncWarning(kind string) {
	if p == nil {
		return
	}
	p.warnings.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncAttachmentCopy(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.attachmentCopies.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}
