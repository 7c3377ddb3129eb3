package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"tripstats/pkg/records"
)

// DeDup removes intra-batch duplicates by business key, keeping the first
// occurrence. Quarterly exports occasionally overlap at the quarter boundary,
// so the same ride id can appear in both input files; counting it twice would
// skew every aggregate. Keys are hashed with xxh3 (128-bit) so the seen-set
// holds two words per row instead of the concatenated key strings.
type DeDup struct {
	// Keys are the field names forming the business key, e.g. ["ride_id"].
	Keys []string

	// Dropped counts duplicate rows removed.
	Dropped int
}

func (d *DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	seen := make(map[xxh3.Uint128]struct{}, len(in))
	out := in[:0]
	var sb strings.Builder
	for _, rec := range in {
		sb.Reset()
		for i, k := range d.Keys {
			if i > 0 {
				sb.WriteByte(0)
			}
			sb.WriteString(rec.String(k))
		}
		h := xxh3.HashString128(sb.String())
		if _, dup := seen[h]; dup {
			d.Dropped++
			continue
		}
		seen[h] = struct{}{}
		out = append(out, rec)
	}
	return out
}
