package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// task applies the decision for a single key.
type task func(ctx context.Context) RecordResult

// Apply executes the change set against the catalog and returns the result.
// One record's failure never prevents the others from being applied. When ctx
// is cancelled no new mutating call is issued; the records not yet attempted
// are reported as skipped and the counters accumulated so far are returned.
func (r *Reconciler) Apply(ctx context.Context, cs ChangeSet, source SourceIndex, target TargetIndex, defaults Defaults) Result {
	tasks := make([]task, 0, cs.Len())
	keys := make([]string, 0, cs.Len())
	actions := make([]ActionType, 0, cs.Len())

	// Deletions and updates run before creations, matching the order
	// operators see in the logs. The buckets touch disjoint keys, so with
	// workers enabled the order is irrelevant for correctness.
	for _, key := range cs.ToDelete {
		tgt := target[key]
		tasks = append(tasks, func(ctx context.Context) RecordResult { return r.deleteOne(ctx, key, tgt) })
		keys = append(keys, key)
		actions = append(actions, ActionDelete)
	}
	for _, key := range cs.ToUpdate {
		src, tgt := source[key], target[key]
		tasks = append(tasks, func(ctx context.Context) RecordResult { return r.updateOne(ctx, key, src, tgt) })
		keys = append(keys, key)
		actions = append(actions, ActionUpdate)
	}
	for _, key := range cs.ToCreate {
		src := source[key]
		tasks = append(tasks, func(ctx context.Context) RecordResult { return r.createOne(ctx, key, src, defaults) })
		keys = append(keys, key)
		actions = append(actions, ActionCreate)
	}

	// Each task writes only its own slot; the fold below is the single
	// aggregation point for counters.
	results := make([]RecordResult, len(tasks))
	run := func(i int) {
		if err := ctx.Err(); err != nil {
			results[i] = RecordResult{Key: keys[i], Action: actions[i], Outcome: OutcomeSkipped, Err: err}
			return
		}
		results[i] = tasks[i](ctx)
	}

	if r.opts.Workers < 2 {
		for i := range tasks {
			run(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.opts.Workers)
		for i := range tasks {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	return Result{
		Counters:  fold(results),
		DryRun:    r.opts.DryRun,
		ChangeSet: cs,
		Records:   results,
	}
}

// fold counts the records that reached a successful branch.
func fold(results []RecordResult) Counters {
	var c Counters
	for _, res := range results {
		if res.Outcome != OutcomeApplied {
			continue
		}
		switch res.Action {
		case ActionDelete:
			c.Deleted++
		case ActionUpdate:
			c.Updated++
		case ActionCreate:
			c.Created++
		}
	}
	return c
}

func (r *Reconciler) deleteOne(ctx context.Context, key string, tgt TargetRecord) RecordResult {
	res := RecordResult{Key: key, Action: ActionDelete}
	l := r.logger.With(zap.String("key", key), zap.Int("id", tgt.ID))

	if !r.opts.DryRun {
		if err := r.catalog.DeleteVirtualMachine(ctx, tgt.ID); err != nil {
			l.Error("Failed to remove instance from catalog", zap.Error(err))
			res.Outcome, res.Err = OutcomeSkipped, err
			return res
		}
	}

	l.Debug("Removed instance from catalog")
	res.Outcome = OutcomeApplied
	return res
}

func (r *Reconciler) updateOne(ctx context.Context, key string, src SourceRecord, tgt TargetRecord) RecordResult {
	res := RecordResult{Key: key, Action: ActionUpdate}
	l := r.logger.With(zap.String("key", key), zap.Int("id", tgt.ID))

	// Recompute against the snapshot rather than trusting the classification.
	norm, err := Normalize(src)
	if err != nil {
		l.Error("Instance could not be converted for update", zap.Error(err))
		res.Outcome, res.Err = OutcomeSkipped, err
		return res
	}

	res.Changes = FieldChanges(norm, tgt)
	if len(res.Changes) == 0 {
		res.Outcome = OutcomeUnchanged
		return res
	}

	for _, c := range res.Changes {
		from := zap.Skip()
		if c.From != nil {
			from = zap.Int("from", *c.From)
		}
		l.Debug("Updating field", zap.String("field", c.Field), from, zap.Int("to", c.To))
	}

	if !r.opts.DryRun {
		if err := r.catalog.UpdateVirtualMachine(ctx, tgt.ID, res.Changes); err != nil {
			l.Error("Failed to update instance in catalog", zap.Error(err))
			res.Outcome, res.Err = OutcomeSkipped, err
			return res
		}
	}

	l.Debug("Updated instance in catalog")
	res.Outcome = OutcomeApplied
	return res
}

func (r *Reconciler) createOne(ctx context.Context, key string, src SourceRecord, defaults Defaults) RecordResult {
	res := RecordResult{Key: key, Action: ActionCreate}
	l := r.logger.With(zap.String("key", key))

	norm, err := Normalize(src)
	if err != nil {
		l.Error("Instance could not be converted for creation", zap.Error(err))
		res.Outcome, res.Err = OutcomeSkipped, err
		return res
	}

	if !r.opts.DryRun {
		id, err := r.catalog.CreateVirtualMachine(ctx, CreateRequest{NormalizedRecord: norm, Defaults: defaults})
		if err != nil {
			l.Error("Failed to create instance in catalog", zap.Error(err))
			res.Outcome, res.Err = OutcomeSkipped, err
			return res
		}
		l = l.With(zap.Int("id", id))
	}

	l.Debug("Added instance to catalog")
	res.Outcome = OutcomeApplied
	return res
}
