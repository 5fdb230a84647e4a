package ganeti

import (
	"encoding/json"
	"fmt"

	"ganeti-netbox-sync/core/reconcile"

	"go.uber.org/zap"
)

// instance is the subset of a RAPI bulk instance entry the sync reads.
// disk.sizes is a flat key in the RAPI output, not a nested object.
type instance struct {
	Name     string `json:"name"`
	BEParams *struct {
		VCPUs  *int `json:"vcpus"`
		Memory *int `json:"memory"`
	} `json:"beparams"`
	DiskSizes []int `json:"disk.sizes"`
}

// Parse decodes a bulk instance list. Entries are decoded one by one so a
// malformed instance becomes a record with missing fields instead of failing
// the list. Only a document that is not a JSON array is an error.
func Parse(data []byte, logger *zap.Logger) ([]reconcile.SourceRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: instance list is not a json array: %w", reconcile.ErrSourceUnavailable, err)
	}

	records := make([]reconcile.SourceRecord, 0, len(raw))
	for i, entry := range raw {
		var inst instance
		if err := json.Unmarshal(entry, &inst); err != nil {
			// Salvage the name so the record is still reported per key
			var named struct {
				Name string `json:"name"`
			}
			_ = json.Unmarshal(entry, &named)
			logger.Warn("Malformed instance entry",
				zap.Int("index", i),
				zap.String("name", named.Name),
				zap.Error(err),
			)
			records = append(records, reconcile.SourceRecord{Name: named.Name})
			continue
		}

		rec := reconcile.SourceRecord{Name: inst.Name, DiskSizes: inst.DiskSizes}
		if inst.BEParams != nil {
			rec.VCPUs = inst.BEParams.VCPUs
			rec.Memory = inst.BEParams.Memory
		}
		records = append(records, rec)
	}

	return records, nil
}
