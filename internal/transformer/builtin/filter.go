package builtin

import (
	"tripstats/internal/schema"
	"tripstats/pkg/records"
)

// Filter retains only analyzable customer rides: positive duration and a
// start station other than the maintenance sentinel. Dropped rows are counted
// per reason so the run summary can report them; they are never flagged or
// kept.
type Filter struct {
	// Sentinel is the maintenance start-station name ("HQ QR" in production).
	Sentinel string

	// NonPositive counts rows dropped for duration <= 0.
	NonPositive int

	// Maintenance counts rows dropped for the sentinel start station.
	Maintenance int
}

func (f *Filter) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		dur, ok := rec.Float(schema.ColRideLength)
		if !ok || dur <= 0 {
			f.NonPositive++
			continue
		}
		if f.Sentinel != "" && rec.String(schema.ColStartStationName) == f.Sentinel {
			f.Maintenance++
			continue
		}
		out = append(out, rec)
	}
	return out
}
