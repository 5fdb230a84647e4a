package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ganeti-netbox-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRun(t *testing.T) {
	r := New()

	res := &reconcile.Result{Records: []reconcile.RecordResult{
		{Key: "a", Action: reconcile.ActionCreate, Outcome: reconcile.OutcomeApplied},
		{Key: "b", Action: reconcile.ActionCreate, Outcome: reconcile.OutcomeApplied},
		{Key: "c", Action: reconcile.ActionDelete, Outcome: reconcile.OutcomeSkipped, Err: errors.New("protected")},
	}}
	r.ObserveRun("eqiad", res, nil, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("eqiad", StatusPartial)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("eqiad", "create", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("eqiad", "delete", "skipped")))
}

func TestRecorder_ObserveRun_DryRunAndFatal(t *testing.T) {
	r := New()

	dry := &reconcile.Result{DryRun: true, Records: []reconcile.RecordResult{
		{Key: "a", Action: reconcile.ActionUpdate, Outcome: reconcile.OutcomeApplied},
	}}
	r.ObserveRun("codfw", dry, nil, time.Second)
	r.ObserveRun("codfw", nil, errors.New("netbox down"), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.recordsTotal.WithLabelValues("codfw", "update", OutcomePlanned)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("codfw", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("codfw", StatusFailed)))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveRun("eqiad", &reconcile.Result{}, nil, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ganeti_netbox_sync_runs_total{profile="eqiad",status="success"} 1`)
	assert.Contains(t, string(body), "ganeti_netbox_sync_run_duration_seconds")
}
