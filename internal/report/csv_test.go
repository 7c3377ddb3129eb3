package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tripstats/internal/analyze"
)

/*
TestSummaryCSVRoundTrip verifies the export contract:

  - Header row is member_casual,day_of_week,number_of_rides,average_duration.
  - Row order is preserved as given (segment then weekday, from the
    aggregator).
  - Writing then reading reproduces identical tuples; the mean compares
    within floating-point tolerance.
  - An existing file at the destination is overwritten, not appended to.
*/
func TestSummaryCSVRoundTrip(t *testing.T) {
	rows := []analyze.SummaryRow{
		{Segment: "casual", Weekday: "Sunday", Count: 18652, MeanDuration: 3581.4054},
		{Segment: "casual", Weekday: "Monday", Count: 5591, MeanDuration: 3372.2869},
		{Segment: "member", Weekday: "Sunday", Count: 60197, MeanDuration: 772.9565217391304},
	}

	path := filepath.Join(t.TempDir(), "summary.csv")
	if err := os.WriteFile(path, []byte("stale content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteSummaryCSV(path, rows); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "member_casual,day_of_week,number_of_rides,average_duration\n") {
		t.Fatalf("missing header row: %q", string(raw))
	}
	if strings.Contains(string(raw), "stale") {
		t.Fatal("destination file was not overwritten")
	}

	got, err := ReadSummaryCSV(path)
	if err != nil {
		t.Fatalf("ReadSummaryCSV: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows; want %d", len(got), len(rows))
	}
	for i, want := range rows {
		g := got[i]
		if g.Segment != want.Segment || g.Weekday != want.Weekday || g.Count != want.Count {
			t.Errorf("row %d = %+v; want %+v", i, g, want)
		}
		if math.Abs(g.MeanDuration-want.MeanDuration) > 1e-9 {
			t.Errorf("row %d mean = %v; want %v", i, g.MeanDuration, want.MeanDuration)
		}
	}
}

func TestWriteSummaryCSV_EmptySummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	if err := WriteSummaryCSV(path, nil); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}
	got, err := ReadSummaryCSV(path)
	if err != nil {
		t.Fatalf("ReadSummaryCSV: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d rows; want 0", len(got))
	}
}

func TestReadSummaryCSV_MissingFile(t *testing.T) {
	if _, err := ReadSummaryCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}
