package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reconciler keeps the virtual machines of one catalog cluster consistent
// with the authoritative instance list. It holds no state between runs.
type Reconciler struct {
	catalog Catalog
	logger  *zap.Logger
	opts    Options
}

// New creates a reconciler over the given catalog.
func New(catalog Catalog, logger *zap.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PlatformSlug == "" {
		opts.PlatformSlug = "linux"
	}
	if opts.RoleSlug == "" {
		opts.RoleSlug = "server"
	}
	return &Reconciler{catalog: catalog, logger: logger, opts: opts}
}

// ResolveDefaults looks up the creation associations for the cluster.
// Any failure is fatal for the run.
func (r *Reconciler) ResolveDefaults(ctx context.Context, cluster string) (Defaults, error) {
	var d Defaults
	var err error

	if d.PlatformID, err = r.catalog.PlatformBySlug(ctx, r.opts.PlatformSlug); err != nil {
		return Defaults{}, fmt.Errorf("%w: platform %q: %w", ErrDefaultsUnresolved, r.opts.PlatformSlug, err)
	}
	if d.ClusterID, err = r.catalog.ClusterByName(ctx, cluster); err != nil {
		return Defaults{}, fmt.Errorf("%w: cluster %q: %w", ErrDefaultsUnresolved, cluster, err)
	}
	if d.RoleID, err = r.catalog.RoleBySlug(ctx, r.opts.RoleSlug); err != nil {
		return Defaults{}, fmt.Errorf("%w: role %q: %w", ErrDefaultsUnresolved, r.opts.RoleSlug, err)
	}

	return d, nil
}

// Plan resolves the defaults, loads the cluster's catalog records and diffs
// them against the source records without mutating anything.
func (r *Reconciler) Plan(ctx context.Context, cluster string, records []SourceRecord) (ChangeSet, SourceIndex, TargetIndex, Defaults, error) {
	p, err := r.plan(ctx, cluster, records)
	if err != nil {
		return ChangeSet{}, nil, nil, Defaults{}, err
	}
	return p.changes, p.source, p.target, p.defaults, nil
}

type plan struct {
	changes  ChangeSet
	source   SourceIndex
	target   TargetIndex
	defaults Defaults
	shadowed []TargetRecord
}

func (r *Reconciler) plan(ctx context.Context, cluster string, records []SourceRecord) (plan, error) {
	defaults, err := r.ResolveDefaults(ctx, cluster)
	if err != nil {
		return plan{}, err
	}

	targets, err := r.catalog.ListVirtualMachines(ctx, defaults.ClusterID)
	if err != nil {
		return plan{}, fmt.Errorf("failed to list catalog virtual machines: %w", err)
	}

	source := BuildSourceIndex(records, r.logger)
	target := BuildTargetIndex(targets, r.logger)
	r.logger.Debug("Built indices", zap.Int("source", len(source)), zap.Int("catalog", len(target)))

	return plan{
		changes:  Diff(source, target),
		source:   source,
		target:   target,
		defaults: defaults,
		shadowed: ShadowedTargets(targets),
	}, nil
}

// Reconcile runs a full pass for the named cluster: resolve defaults, fetch
// the catalog records, diff, apply. Errors returned here are fatal and occur
// before any mutation; per-record failures are reported in the result.
func (r *Reconciler) Reconcile(ctx context.Context, cluster string, records []SourceRecord) (*Result, error) {
	if r.opts.DryRun {
		r.logger.Info("*** DRY RUN ***")
	}

	p, err := r.plan(ctx, cluster, records)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Planned reconciliation",
		zap.String("cluster", cluster),
		zap.Int("to_delete", len(p.changes.ToDelete)),
		zap.Int("to_update", len(p.changes.ToUpdate)),
		zap.Int("to_create", len(p.changes.ToCreate)),
		zap.Int("duplicates", len(p.shadowed)),
	)

	res := r.Apply(ctx, p.changes, p.source, p.target, p.defaults)
	res.Duplicates = p.shadowed

	r.logger.Info("Reconciliation finished",
		zap.Bool("dry_run", res.DryRun),
		zap.Int("removed", res.Counters.Deleted),
		zap.Int("updated", res.Counters.Updated),
		zap.Int("added", res.Counters.Created),
		zap.Int("failed", len(res.Failed())),
	)

	return &res, nil
}
