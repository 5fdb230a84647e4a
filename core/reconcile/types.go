package reconcile

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrMalformedRecord marks a source or target record missing a field the
	// normalizer or the diff step needs.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDefaultsUnresolved is returned when a creation default (cluster,
	// platform or role) cannot be resolved. It aborts the run before any mutation.
	ErrDefaultsUnresolved = errors.New("creation defaults unresolved")

	// ErrSourceUnavailable is returned when the authoritative instance list
	// cannot be acquired at all.
	ErrSourceUnavailable = errors.New("authoritative source unavailable")
)

// SourceRecord is one compute instance as reported by the authoritative cluster.
// Pointer and nil-slice fields mean the source omitted the value.
type SourceRecord struct {
	// Name is the fully qualified instance name (e.g. "vm1.example.com").
	Name string `json:"name"`

	// VCPUs is the configured virtual CPU count.
	VCPUs *int `json:"vcpus"`

	// Memory is the configured memory in MiB.
	Memory *int `json:"memory"`

	// DiskSizes lists the instance disks as reported by the source. The
	// catalog unit is 1024 times larger (see DiskGiB).
	DiskSizes []int `json:"disk_sizes"`
}

// NormalizedRecord is a SourceRecord projected into the catalog vocabulary.
type NormalizedRecord struct {
	Name   string `json:"name"`
	VCPUs  int    `json:"vcpus"`
	Memory int    `json:"memory"`
	Disk   int    `json:"disk"`
}

// TargetRecord is an existing virtual machine in the downstream catalog.
// Numeric fields are nil when the catalog has no value stored.
type TargetRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	VCPUs  *int   `json:"vcpus"`
	Memory *int   `json:"memory"`
	Disk   *int   `json:"disk"`
}

// Defaults are the associations attached to every created virtual machine.
// They are resolved once per run and never revised on existing records.
type Defaults struct {
	ClusterID  int `json:"cluster_id"`
	PlatformID int `json:"platform_id"`
	RoleID     int `json:"role_id"`
}

// CreateRequest is the payload handed to the catalog for a new virtual machine.
type CreateRequest struct {
	NormalizedRecord
	Defaults
}

// Field names shared by the diff and the catalog adapters.
const (
	FieldVCPUs  = "vcpus"
	FieldMemory = "memory"
	FieldDisk   = "disk"
)

// FieldChange is one differing field between the normalized source and the target.
type FieldChange struct {
	Field string `json:"field"`
	From  *int   `json:"from"`
	To    int    `json:"to"`
}

func (c FieldChange) String() string {
	if c.From == nil {
		return fmt.Sprintf("%s: <nil> -> %d", c.Field, c.To)
	}
	return fmt.Sprintf("%s: %d -> %d", c.Field, *c.From, c.To)
}

// ChangeSet is the classification produced by one diff pass. Keys are sorted
// and the three collections are disjoint. Keys present on both sides with
// equal fields appear in none of them.
type ChangeSet struct {
	ToDelete []string `json:"to_delete"`
	ToCreate []string `json:"to_create"`
	ToUpdate []string `json:"to_update"`
}

// Len returns the number of keys requiring an action.
func (c ChangeSet) Len() int {
	return len(c.ToDelete) + len(c.ToCreate) + len(c.ToUpdate)
}

// ActionType identifies the mutation planned for a key.
type ActionType string

const (
	ActionDelete ActionType = "delete"
	ActionUpdate ActionType = "update"
	ActionCreate ActionType = "create"
)

// Outcome is the terminal state of a single record in the apply phase.
type Outcome string

const (
	// OutcomeApplied means the mutation succeeded (or was simulated in dry-run).
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped means the record failed or was not attempted; Err holds why.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnchanged means the apply-time diff found nothing left to write.
	OutcomeUnchanged Outcome = "unchanged"
)

// RecordResult is the per-record result of the apply phase.
type RecordResult struct {
	Key     string        `json:"key"`
	Action  ActionType    `json:"action"`
	Outcome Outcome       `json:"outcome"`
	Changes []FieldChange `json:"changes,omitempty"`
	Err     error         `json:"-"`
}

// Counters holds the outcome counts of one run.
type Counters struct {
	Deleted int `json:"deleted"`
	Updated int `json:"updated"`
	Created int `json:"created"`
}

// Add returns the sum of two counter sets.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Deleted: c.Deleted + o.Deleted,
		Updated: c.Updated + o.Updated,
		Created: c.Created + o.Created,
	}
}

// Total returns the number of applied mutations.
func (c Counters) Total() int {
	return c.Deleted + c.Updated + c.Created
}

// Result is the outcome of a reconcile run.
type Result struct {
	// Counters counts records that reached a successful branch. In dry-run
	// they count mutations that would have been issued.
	Counters Counters `json:"counters"`

	// DryRun reports whether the counters are planned rather than applied.
	DryRun bool `json:"dry_run"`

	// ChangeSet is the classification the run acted on.
	ChangeSet ChangeSet `json:"change_set"`

	// Records holds one entry per key in the change set.
	Records []RecordResult `json:"records"`

	// Duplicates are catalog records sharing a name with a later record.
	// Only the last one per name is reconciled; these are left untouched.
	Duplicates []TargetRecord `json:"duplicates,omitempty"`
}

// Failed returns the records that were skipped.
func (r *Result) Failed() []RecordResult {
	var failed []RecordResult
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeSkipped {
			failed = append(failed, rec)
		}
	}
	return failed
}

// Err combines all per-record failures into a single error, or nil.
func (r *Result) Err() error {
	var err error
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeSkipped && rec.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s %s: %w", rec.Action, rec.Key, rec.Err))
		}
	}
	return err
}

// Options control a reconcile run.
type Options struct {
	// DryRun computes the full change set and simulates outcomes without
	// issuing any mutating call to the catalog.
	DryRun bool

	// Workers bounds the number of concurrent per-record mutations.
	// Values below 2 apply records sequentially.
	Workers int

	// PlatformSlug and RoleSlug select the creation defaults.
	PlatformSlug string
	RoleSlug     string
}
