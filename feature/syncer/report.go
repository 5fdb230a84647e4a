package syncer

import (
	"fmt"
	"time"

	"ganeti-netbox-sync/core/reconcile"
)

// Failure is one record that could not be applied.
type Failure struct {
	Key    string               `json:"key"`
	Action reconcile.ActionType `json:"action"`
	Error  string               `json:"error"`
}

// Report summarizes a completed run. Fatal runs produce no report.
type Report struct {
	RunID     string              `json:"run_id"`
	Profile   string              `json:"profile"`
	Cluster   string              `json:"cluster"`
	DryRun    bool                `json:"dry_run"`
	Counters  reconcile.Counters  `json:"counters"`
	ChangeSet reconcile.ChangeSet `json:"change_set"`
	Failures  []Failure           `json:"failures"`
	// Duplicates are catalog records left alone because a later record
	// has the same name.
	Duplicates []reconcile.TargetRecord `json:"duplicates,omitempty"`
	StartedAt  time.Time                `json:"started_at"`
	// DurationSeconds is the wall time of the run.
	DurationSeconds float64 `json:"duration_seconds"`
}

func newReport(runID string, profile, cluster string, dryRun bool, started time.Time) *Report {
	return &Report{
		RunID:     runID,
		Profile:   profile,
		Cluster:   cluster,
		DryRun:    dryRun,
		Failures:  []Failure{},
		StartedAt: started,
	}
}

func (r *Report) fill(res *reconcile.Result, elapsed time.Duration) {
	r.Counters = res.Counters
	r.ChangeSet = res.ChangeSet
	r.Duplicates = res.Duplicates
	for _, rec := range res.Failed() {
		msg := ""
		if rec.Err != nil {
			msg = rec.Err.Error()
		}
		r.Failures = append(r.Failures, Failure{Key: rec.Key, Action: rec.Action, Error: msg})
	}
	r.DurationSeconds = elapsed.Seconds()
}

// Summary renders the one line printed at the end of a run.
func (r *Report) Summary() string {
	s := fmt.Sprintf("removed %d, updated %d, added %d instances",
		r.Counters.Deleted, r.Counters.Updated, r.Counters.Created)
	if len(r.Failures) > 0 {
		s += fmt.Sprintf(", %d failed", len(r.Failures))
	}
	if len(r.Duplicates) > 0 {
		s += fmt.Sprintf(", %d duplicate catalog records ignored", len(r.Duplicates))
	}
	if r.DryRun {
		s = "[dry run] would have " + s
	}
	return s
}
