package analyze

import (
	"sort"

	"tripstats/internal/schema"
	"tripstats/pkg/records"
)

// SummaryRow is one (segment, weekday) cell of the grouped summary.
type SummaryRow struct {
	Segment      string
	Weekday      string
	Count        int64
	MeanDuration float64 // seconds
}

// Durations extracts the ride_length column from every record that has one.
func Durations(recs []records.Record) []float64 {
	out := make([]float64, 0, len(recs))
	for _, r := range recs {
		if d, ok := r.Float(schema.ColRideLength); ok {
			out = append(out, d)
		}
	}
	return out
}

// DurationsBySegment splits ride_length values by the member_casual column.
func DurationsBySegment(recs []records.Record) map[string][]float64 {
	out := make(map[string][]float64, 2)
	for _, r := range recs {
		d, ok := r.Float(schema.ColRideLength)
		if !ok {
			continue
		}
		seg := r.String(schema.ColMemberCasual)
		out[seg] = append(out[seg], d)
	}
	return out
}

// GroupBySegmentWeekday computes ride count and mean duration for every
// (segment, weekday) pair present in the data. Pairs with no matching rows
// are omitted, standard group-by semantics. Rows come back sorted by segment
// then Sunday-first weekday rank, so output order is deterministic.
func GroupBySegmentWeekday(recs []records.Record) []SummaryRow {
	type cell struct {
		count int64
		sum   float64
	}
	type key struct {
		segment string
		weekday string
	}

	cells := make(map[key]*cell)
	for _, r := range recs {
		d, ok := r.Float(schema.ColRideLength)
		if !ok {
			continue
		}
		k := key{
			segment: r.String(schema.ColMemberCasual),
			weekday: r.String(schema.ColDayOfWeek),
		}
		c := cells[k]
		if c == nil {
			c = &cell{}
			cells[k] = c
		}
		c.count++
		c.sum += d
	}

	rows := make([]SummaryRow, 0, len(cells))
	for k, c := range cells {
		rows = append(rows, SummaryRow{
			Segment:      k.segment,
			Weekday:      k.weekday,
			Count:        c.count,
			MeanDuration: c.sum / float64(c.count),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Segment != rows[j].Segment {
			return rows[i].Segment < rows[j].Segment
		}
		return WeekdayRank(rows[i].Weekday) < WeekdayRank(rows[j].Weekday)
	})
	return rows
}
