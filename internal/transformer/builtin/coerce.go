package builtin

import (
	"time"

	"tripstats/pkg/records"
)

// CoerceTime parses the listed string columns into time.Time values, trying
// each layout in order. Values that parse under no layout are left as strings;
// Derive rejects such rows later with a counted reason, which keeps parse
// failures auditable instead of silent.
type CoerceTime struct {
	Fields  []string
	Layouts []string
}

func (c CoerceTime) Apply(in []records.Record) []records.Record {
	for _, rec := range in {
		for _, f := range c.Fields {
			s := rec.String(f)
			if s == "" {
				continue
			}
			for _, layout := range c.Layouts {
				if t, err := time.Parse(layout, s); err == nil {
					rec[f] = t
					break
				}
			}
		}
	}
	return in
}
