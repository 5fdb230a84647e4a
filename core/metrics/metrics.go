package metrics

import (
	"net/http"
	"time"

	"ganeti-netbox-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run status label values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// OutcomePlanned labels records a dry run would have applied.
const OutcomePlanned = "planned"

// Recorder holds the sync metrics on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	recordsTotal  *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	lastSuccessTS *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganeti_netbox_sync_runs_total",
				Help: "Total number of sync runs",
			},
			[]string{"profile", "status"}, // success, partial, failed
		),
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganeti_netbox_sync_records_total",
				Help: "Total number of records processed by the apply phase",
			},
			[]string{"profile", "action", "outcome"}, // outcome: applied/planned/skipped/unchanged
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "ganeti_netbox_sync_run_duration_seconds",
				Help: "Duration of sync runs in seconds",
				Buckets: []float64{
					1,   // 1 second
					5,   // 5 seconds
					15,  // 15 seconds
					30,  // 30 seconds
					60,  // 1 minute
					300, // 5 minutes
					900, // 15 minutes
				},
			},
			[]string{"profile"},
		),
		lastSuccessTS: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ganeti_netbox_sync_last_success_timestamp",
				Help: "Unix timestamp of the last run without failures",
			},
			[]string{"profile"},
		),
	}
}

// ObserveRun records one finished run. res is nil when the run failed before
// the apply phase.
func (r *Recorder) ObserveRun(profile string, res *reconcile.Result, err error, elapsed time.Duration) {
	r.runDuration.WithLabelValues(profile).Observe(elapsed.Seconds())

	status := StatusSuccess
	switch {
	case err != nil || res == nil:
		status = StatusFailed
	case len(res.Failed()) > 0:
		status = StatusPartial
	}
	r.runsTotal.WithLabelValues(profile, status).Inc()

	if res == nil {
		return
	}
	for _, rec := range res.Records {
		outcome := string(rec.Outcome)
		if res.DryRun && rec.Outcome == reconcile.OutcomeApplied {
			outcome = OutcomePlanned
		}
		r.recordsTotal.WithLabelValues(profile, string(rec.Action), outcome).Inc()
	}

	if status == StatusSuccess && !res.DryRun {
		r.lastSuccessTS.WithLabelValues(profile).SetToCurrentTime()
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
