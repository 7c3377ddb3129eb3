package builtin

import (
	"time"

	"tripstats/internal/schema"
	"tripstats/internal/transformer"
	"tripstats/pkg/records"
)

// Derive adds the calendar and duration columns computed from the coerced
// start/end timestamps: date (midnight-truncated start), month, day, year,
// day_of_week (English weekday name, locale-independent), and ride_length in
// seconds as float64. Rows whose timestamps failed coercion are removed and
// reported through the Reject sink.
type Derive struct {
	Reject func(transformer.RejectedRow)

	// Unparsed counts rows dropped because a timestamp never coerced.
	Unparsed int
}

// weekdayNames indexes time.Weekday (Sunday == 0) to the display name used in
// the grouped summary. Derived from the constant here, never from the locale.
var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func (d *Derive) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		start, okStart := rec.Time(schema.ColStartedAt)
		end, okEnd := rec.Time(schema.ColEndedAt)
		if !okStart || !okEnd {
			d.Unparsed++
			if d.Reject != nil {
				d.Reject(transformer.RejectedRow{
					Raw:    rec,
					Reason: "unparseable start or end timestamp",
					Stage:  "derive",
				})
			}
			continue
		}

		date := start.Truncate(24 * time.Hour)
		rec[schema.ColDate] = date
		rec[schema.ColMonth] = int(start.Month())
		rec[schema.ColDay] = start.Day()
		rec[schema.ColYear] = start.Year()
		rec[schema.ColDayOfWeek] = weekdayNames[int(start.Weekday())]
		rec[schema.ColRideLength] = end.Sub(start).Seconds()
		out = append(out, rec)
	}
	return out
}
