package analyze

import (
	"testing"

	"tripstats/internal/schema"
	"tripstats/pkg/records"
)

func trip(segment, weekday string, seconds float64) records.Record {
	return records.Record{
		schema.ColMemberCasual: segment,
		schema.ColDayOfWeek:    weekday,
		schema.ColRideLength:   seconds,
	}
}

/*
TestGroupBySegmentWeekday verifies the grouped summary semantics:

  - One row per observed (segment, weekday) pair with count and mean.
  - Pairs with no rows are omitted, not zero-filled.
  - Output sorts by segment, then Sunday-first weekday rank, so "Friday"
    must not sort before "Monday" the way alphabetic order would put it.
  - Counts across all rows sum to the number of input records.
*/
func TestGroupBySegmentWeekday(t *testing.T) {
	recs := []records.Record{
		trip("member", "Monday", 100),
		trip("member", "Monday", 300),
		trip("member", "Friday", 60),
		trip("casual", "Sunday", 1000),
		trip("casual", "Friday", 500),
		trip("member", "Sunday", 240),
	}

	rows := GroupBySegmentWeekday(recs)

	want := []SummaryRow{
		{Segment: "casual", Weekday: "Sunday", Count: 1, MeanDuration: 1000},
		{Segment: "casual", Weekday: "Friday", Count: 1, MeanDuration: 500},
		{Segment: "member", Weekday: "Sunday", Count: 1, MeanDuration: 240},
		{Segment: "member", Weekday: "Monday", Count: 2, MeanDuration: 200},
		{Segment: "member", Weekday: "Friday", Count: 1, MeanDuration: 60},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows; want %d: %+v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v; want %+v", i, rows[i], want[i])
		}
	}

	var total int64
	for _, r := range rows {
		total += r.Count
	}
	if total != int64(len(recs)) {
		t.Errorf("counts sum to %d; want %d", total, len(recs))
	}
}

func TestGroupBySegmentWeekday_SkipsRowsWithoutDuration(t *testing.T) {
	recs := []records.Record{
		trip("member", "Monday", 100),
		{schema.ColMemberCasual: "member", schema.ColDayOfWeek: "Monday"},
	}
	rows := GroupBySegmentWeekday(recs)
	if len(rows) != 1 || rows[0].Count != 1 {
		t.Fatalf("rows = %+v; want one Monday cell with count 1", rows)
	}
}

func TestWeekdayRank(t *testing.T) {
	prev := -1
	for _, d := range WeekdayOrder {
		r := WeekdayRank(d)
		if r <= prev {
			t.Fatalf("rank(%s)=%d not increasing", d, r)
		}
		prev = r
	}
	if WeekdayRank("Funday") != 7 {
		t.Errorf("unknown weekday rank = %d; want 7", WeekdayRank("Funday"))
	}
}

func TestDurationsBySegment(t *testing.T) {
	recs := []records.Record{
		trip("member", "Monday", 100),
		trip("casual", "Monday", 200),
		trip("member", "Friday", 300),
	}
	got := DurationsBySegment(recs)
	if len(got["member"]) != 2 || len(got["casual"]) != 1 {
		t.Fatalf("split = %#v; want 2 member / 1 casual", got)
	}
}
