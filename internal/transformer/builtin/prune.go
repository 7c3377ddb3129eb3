package builtin

import "tripstats/pkg/records"

// Prune deletes source-specific columns from every record. A record lacking a
// listed column is left alone; pruning is idempotent and never drops rows.
type Prune struct {
	Columns []string
}

func (p Prune) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, c := range p.Columns {
			delete(r, c)
		}
	}
	return in
}
