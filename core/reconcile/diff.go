package reconcile

import (
	"sort"
)

// Diff classifies every key of both indices into exactly one of delete
// (catalog only), create (source only), update (both, with a differing field)
// or no action (both, equal).
//
// A key present on both sides whose source record cannot be normalized is
// classified as update: it cannot be proven equal, and the apply-time
// recomputation reports it as malformed.
func Diff(source SourceIndex, target TargetIndex) ChangeSet {
	cs := ChangeSet{
		ToDelete: []string{},
		ToCreate: []string{},
		ToUpdate: []string{},
	}

	for key := range target {
		if _, ok := source[key]; !ok {
			cs.ToDelete = append(cs.ToDelete, key)
		}
	}

	for key, src := range source {
		tgt, ok := target[key]
		if !ok {
			cs.ToCreate = append(cs.ToCreate, key)
			continue
		}

		norm, err := Normalize(src)
		if err != nil || len(FieldChanges(norm, tgt)) > 0 {
			cs.ToUpdate = append(cs.ToUpdate, key)
		}
	}

	// Sort for deterministic output
	sort.Strings(cs.ToDelete)
	sort.Strings(cs.ToCreate)
	sort.Strings(cs.ToUpdate)

	return cs
}

// FieldChanges compares the normalized source against the catalog record
// using exact equality. A field the catalog has no value for always differs.
func FieldChanges(norm NormalizedRecord, target TargetRecord) []FieldChange {
	var changes []FieldChange

	compare := func(field string, have *int, want int) {
		if have == nil || *have != want {
			changes = append(changes, FieldChange{Field: field, From: have, To: want})
		}
	}

	compare(FieldVCPUs, target.VCPUs, norm.VCPUs)
	compare(FieldMemory, target.Memory, norm.Memory)
	compare(FieldDisk, target.Disk, norm.Disk)

	return changes
}
