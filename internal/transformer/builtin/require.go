package builtin

import "tripstats/pkg/records"

// Require drops records missing a value for any of the listed fields. The
// pipeline runs it ahead of coercion so later steps can assume the core trip
// columns are populated.
type Require struct {
	Fields []string

	// Dropped counts rows removed, for the run audit.
	Dropped int
}

func (r *Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if !rec.Has(f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		} else {
			r.Dropped++
		}
	}
	return out
}
