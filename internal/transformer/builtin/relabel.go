package builtin

import (
	"tripstats/internal/transformer"
	"tripstats/pkg/records"
)

// Relabel maps legacy rider-segment spellings onto the canonical labels.
// A value outside the map is a data-quality problem: the row is removed and
// handed to the Reject sink, and the caller checks Unknown to decide whether
// the run continues (lenient policy) or aborts (strict policy). Silently
// admitting a third segment category is never an option.
type Relabel struct {
	// Field is the column holding the segment label.
	Field string

	// Map is the exhaustive legacy-label -> canonical-label mapping.
	Map map[string]string

	// Reject, when set, receives every row dropped for an unknown label.
	Reject func(transformer.RejectedRow)

	// Unknown counts rows with a label outside Map.
	Unknown int
}

func (rl *Relabel) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		label := rec.String(rl.Field)
		canonical, ok := rl.Map[label]
		if !ok {
			rl.Unknown++
			if rl.Reject != nil {
				rl.Reject(transformer.RejectedRow{
					Raw:    rec,
					Reason: "unrecognized segment label " + label,
					Stage:  "relabel",
				})
			}
			continue
		}
		rec[rl.Field] = canonical
		out = append(out, rec)
	}
	return out
}
