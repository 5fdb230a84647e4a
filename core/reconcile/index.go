package reconcile

import (
	"go.uber.org/zap"
)

// SourceIndex maps join keys to the raw source records.
type SourceIndex map[string]SourceRecord

// TargetIndex maps join keys to the catalog records.
type TargetIndex map[string]TargetRecord

// BuildSourceIndex keys the source records by JoinKey. Records without a
// name cannot be correlated and are dropped with a warning. When two records
// share a key the later one wins.
func BuildSourceIndex(records []SourceRecord, logger *zap.Logger) SourceIndex {
	index := make(SourceIndex, len(records))
	for _, rec := range records {
		key := JoinKey(rec.Name)
		if key == "" {
			logger.Warn("Dropping source record without a name")
			continue
		}
		if prev, dup := index[key]; dup {
			logger.Warn("Duplicate join key in source",
				zap.String("key", key),
				zap.String("previous", prev.Name),
				zap.String("kept", rec.Name),
			)
		}
		index[key] = rec
	}
	return index
}

// BuildTargetIndex keys the catalog records by name. When two records share
// a name the later one wins; ShadowedTargets returns the losers.
func BuildTargetIndex(records []TargetRecord, logger *zap.Logger) TargetIndex {
	index := make(TargetIndex, len(records))
	for _, rec := range records {
		if prev, dup := index[rec.Name]; dup {
			logger.Warn("Duplicate name in catalog",
				zap.String("key", rec.Name),
				zap.Int("previous_id", prev.ID),
				zap.Int("kept_id", rec.ID),
			)
		}
		index[rec.Name] = rec
	}
	return index
}

// ShadowedTargets returns the catalog records BuildTargetIndex drops because
// a later record has the same name. They are never diffed or deleted.
func ShadowedTargets(records []TargetRecord) []TargetRecord {
	last := make(map[string]int, len(records))
	for i, rec := range records {
		last[rec.Name] = i
	}
	var shadowed []TargetRecord
	for i, rec := range records {
		if last[rec.Name] != i {
			shadowed = append(shadowed, rec)
		}
	}
	return shadowed
}
