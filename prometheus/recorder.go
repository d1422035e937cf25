// Package prometheus records run telemetry as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/fwojciec/curator"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure Recorder implements curator.Metrics at compile time.
var _ curator.Metrics = (*Recorder)(nil)

const namespace = "curator"

// Recorder implements curator.Metrics on its own registry.
type Recorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	fetches       *prom.CounterVec
	examples      *prom.CounterVec
	runs          *prom.CounterVec
	lastRun       prom.Gauge
}

// NewRecorder creates a Recorder and registers its collectors on reg. A
// nil reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of run stages",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		fetches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Page fetches by result",
		}, []string{"result"}),
		examples: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "examples_total",
			Help:      "Processed examples by status",
		}, []string{"status"}),
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by decision and outcome",
		}, []string{"decision", "outcome"}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(r.stageDuration, r.fetches, r.examples, r.runs, r.lastRun)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prom.Registry {
	return r.reg
}

func (r *Recorder) ObserveStage(stage curator.State, d time.Duration) {
	r.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (r *Recorder) IncFetch(result string) {
	r.fetches.WithLabelValues(result).Inc()
}

func (r *Recorder) IncExample(status curator.Status) {
	r.examples.WithLabelValues(string(status)).Inc()
}

// IncRun counts a finished run. A run that failed before deciding is
// labelled "none".
func (r *Recorder) IncRun(decision curator.Decision, failed bool) {
	d := string(decision)
	if d == "" {
		d = "none"
	}
	outcome := "success"
	if failed {
		outcome = "failed"
	}
	r.runs.WithLabelValues(d, outcome).Inc()
	r.lastRun.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteTextfile writes the registry to path for the node exporter
// textfile collector. One-shot runs exit before they can be scraped.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, r.reg); err != nil {
		return curator.Errorf(curator.EINTERNAL, "failed to write metrics: %v", err)
	}
	return nil
}
