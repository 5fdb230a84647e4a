// Package reconcile keeps the virtual machines of a downstream inventory
// catalog consistent with an authoritative compute cluster.
//
// A run is a single synchronous pass:
//
//  1. Normalize: project each source instance into the catalog vocabulary
//     (short hostname, vCPUs, memory, rounded disk).
//  2. Index: key both sides by the short hostname (the join key).
//  3. Diff: classify every key as delete (catalog only), create (source only),
//     update (both, a field differs) or no action.
//  4. Apply: issue the mutations, isolating failures per record, and fold the
//     per-record results into counters.
//
// # Dry Run
//
// With Options.DryRun the full change set is computed and every record is
// counted as it would be in a live run, but no mutating call reaches the
// catalog. Result.DryRun marks the counters as planned.
//
// # Catalogs
//
// The Catalog interface is the only dependency on the downstream system.
// See feature/netbox for the REST implementation and feature/sqlcatalog for a
// relational one.
//
// # Usage
//
//	r := reconcile.New(catalog, logger, reconcile.Options{DryRun: true})
//	res, err := r.Reconcile(ctx, "ganeti-eqiad", records)
//	if err != nil {
//	    return err // fatal, nothing was mutated
//	}
//	fmt.Println(res.Counters.Created, res.Counters.Updated, res.Counters.Deleted)
package reconcile
