package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	checkDuration *prom.HistogramVec
	runDuration   prom.Histogram
	issues        *prom.CounterVec
	runOutcome    *prom.CounterVec
	documents     *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		checkDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "continuity",
			Name:      "check_duration_seconds",
			Help:      "Duration of individual checks (links, consistency, dependencies)",
			Buckets:   prom.DefBuckets,
		}, []string{"check"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "continuity",
			Name:      "run_duration_seconds",
			Help:      "Total continuity run duration",
			Buckets:   prom.DefBuckets,
		}),
		issues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "continuity",
			Name:      "issues_total",
			Help:      "Issues found by kind",
		}, []string{"kind"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "continuity",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		documents: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "continuity",
			Name:      "documents",
			Help:      "Documents in the last run by state",
		}, []string{"state"}),
	}
	reg.MustRegister(pr.checkDuration, pr.runDuration, pr.issues, pr.runOutcome, pr.documents)
	return pr
}

func (p *PrometheusRecorder) ObserveCheckDuration(check string, d time.Duration) {
	if p == nil {
		return
	}
	p.checkDuration.WithLabelValues(check).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddIssues(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.issues.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetDocuments(analyzed, unreadable int) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues("analyzed").Set(float64(analyzed))
	p.documents.WithLabelValues("unreadable").Set(float64(unreadable))
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}
