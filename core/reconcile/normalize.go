package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// JoinKey returns the short hostname of a fully qualified name: everything
// before the first ".". Matching is exact and case-sensitive.
func JoinKey(fqdn string) string {
	if i := strings.IndexByte(fqdn, '.'); i >= 0 {
		return fqdn[:i]
	}
	return fqdn
}

// DiskGiB sums the disk sizes, divides by 1024 and rounds half to even,
// so 1536 -> 2, 2560 -> 2 and 3584 -> 4.
func DiskGiB(sizes []int) int {
	total := lo.Sum(sizes)
	return int(math.RoundToEven(float64(total) / 1024))
}

// Normalize projects a source record into the catalog vocabulary.
// It does not apply any creation defaults.
func Normalize(rec SourceRecord) (NormalizedRecord, error) {
	key := JoinKey(rec.Name)
	if key == "" {
		return NormalizedRecord{}, fmt.Errorf("%w: missing name", ErrMalformedRecord)
	}
	if rec.VCPUs == nil {
		return NormalizedRecord{}, fmt.Errorf("%w: %s: missing vcpus", ErrMalformedRecord, key)
	}
	if rec.Memory == nil {
		return NormalizedRecord{}, fmt.Errorf("%w: %s: missing memory", ErrMalformedRecord, key)
	}
	if rec.DiskSizes == nil {
		return NormalizedRecord{}, fmt.Errorf("%w: %s: missing disk sizes", ErrMalformedRecord, key)
	}

	return NormalizedRecord{
		Name:   key,
		VCPUs:  *rec.VCPUs,
		Memory: *rec.Memory,
		Disk:   DiskGiB(rec.DiskSizes),
	}, nil
}
