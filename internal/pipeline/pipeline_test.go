package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"tripstats/internal/config"
	"tripstats/internal/report"
)

const legacyHeader = "trip_id,start_time,end_time,bikeid,tripduration,from_station_id,from_station_name,to_station_id,to_station_name,usertype,gender,birthyear\n"

const modernHeader = "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,end_station_name,end_station_id,start_lat,start_lng,end_lat,end_lng,member_casual\n"

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testPipeline(t *testing.T, legacy, modern string) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	return config.Pipeline{
		Job: "test",
		Inputs: config.Inputs{
			Legacy: config.InputFile{Path: writeInput(t, dir, "legacy.csv", legacy)},
			Modern: config.InputFile{Path: writeInput(t, dir, "modern.csv", modern)},
		},
		Cleaning: config.Cleaning{
			LabelPolicy: config.LabelPolicyStrict,
			DedupKeys:   []string{"ride_id"},
		},
		Output: config.Output{
			SummaryCSV: filepath.Join(dir, "summary.csv"),
		},
	}
}

/*
TestRun_EndToEnd exercises the full pipeline on two synthetic 3-row inputs,
one row per input with a non-positive duration:

  - The cleaned table has exactly 4 rows.
  - "Subscriber" and "Customer" become "member" and "casual".
  - Grouped counts sum to the retained row count.
  - The exported summary round-trips with identical tuples.
  - Pruned legacy columns (tripduration, gender, birthyear) are gone from
    the analysis: the derived duration comes from the timestamps.
*/
func TestRun_EndToEnd(t *testing.T) {
	// 2019-01-06 is a Sunday, 2019-01-08 a Tuesday.
	legacy := legacyHeader +
		"101,2019-01-06 10:00:00,2019-01-06 10:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,Male,1984\n" +
		"102,2019-01-07 09:00:00,2019-01-07 08:50:00,2,0,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n" +
		"103,2019-01-08 12:00:00,2019-01-08 12:30:00,3,1800,12,Wells St & Concord Ln,13,State St & Randolph St,Customer,,\n"
	// 2020-02-02 is a Sunday, 2020-02-04 a Tuesday.
	modern := modernHeader +
		"R201,docked_bike,2020-02-02 08:00:00,2020-02-02 08:05:00,Clark St & Addison St,10,Canal St & Madison St,11,41.9,-87.6,41.8,-87.6,member\n" +
		"R202,docked_bike,2020-02-03 10:00:00,2020-02-03 10:00:00,Wells St & Concord Ln,12,Wells St & Concord Ln,12,41.9,-87.6,41.9,-87.6,casual\n" +
		"R203,docked_bike,2020-02-04 18:00:00,2020-02-04 18:45:00,State St & Randolph St,13,Clark St & Addison St,10,41.8,-87.6,41.9,-87.6,casual\n"

	p := testPipeline(t, legacy, modern)
	sum, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.LegacyRows != 3 || sum.ModernRows != 3 {
		t.Errorf("loaded %d+%d rows; want 3+3", sum.LegacyRows, sum.ModernRows)
	}
	if sum.Retained != 4 {
		t.Fatalf("retained %d rows; want 4", sum.Retained)
	}
	if sum.NonPositiveDurations != 2 {
		t.Errorf("non-positive drops = %d; want 2", sum.NonPositiveDurations)
	}
	if sum.UnknownLabels != 0 || sum.MaintenanceRows != 0 || sum.Duplicates != 0 {
		t.Errorf("unexpected drops: %+v", sum)
	}

	var total int64
	for _, r := range sum.Grouped {
		total += r.Count
		if r.Segment != "member" && r.Segment != "casual" {
			t.Errorf("non-canonical segment %q in summary", r.Segment)
		}
	}
	if total != int64(sum.Retained) {
		t.Errorf("grouped counts sum to %d; want %d", total, sum.Retained)
	}

	// member: Sunday x2 (both quarters); casual: Tuesday x2.
	byKey := map[[2]string]int64{}
	for _, r := range sum.Grouped {
		byKey[[2]string{r.Segment, r.Weekday}] = r.Count
	}
	if byKey[[2]string{"member", "Sunday"}] != 2 {
		t.Errorf("member/Sunday = %d; want 2", byKey[[2]string{"member", "Sunday"}])
	}
	if byKey[[2]string{"casual", "Tuesday"}] != 2 {
		t.Errorf("casual/Tuesday = %d; want 2", byKey[[2]string{"casual", "Tuesday"}])
	}

	// Durations derive from timestamps, not the legacy tripduration column:
	// the Customer ride is 30 minutes even though tripduration says 1800 too;
	// the Subscriber Sunday pair averages (600+300)/2.
	if got := sum.BySegment["member"].Mean; math.Abs(got-450) > 1e-9 {
		t.Errorf("member mean = %v; want 450", got)
	}

	exported, err := report.ReadSummaryCSV(p.Output.SummaryCSV)
	if err != nil {
		t.Fatalf("read exported summary: %v", err)
	}
	if len(exported) != len(sum.Grouped) {
		t.Fatalf("exported %d rows; want %d", len(exported), len(sum.Grouped))
	}
	for i, want := range sum.Grouped {
		got := exported[i]
		if got.Segment != want.Segment || got.Weekday != want.Weekday || got.Count != want.Count {
			t.Errorf("exported[%d] = %+v; want %+v", i, got, want)
		}
		if math.Abs(got.MeanDuration-want.MeanDuration) > 1e-9 {
			t.Errorf("exported[%d] mean = %v; want %v", i, got.MeanDuration, want.MeanDuration)
		}
	}
}

// A ride starting at the maintenance station is excluded even with a
// positive duration, and counted.
func TestRun_ExcludesMaintenanceStation(t *testing.T) {
	legacy := legacyHeader +
		"101,2019-01-06 10:00:00,2019-01-06 10:10:00,1,600,10,HQ QR,11,Canal St & Madison St,Subscriber,,\n" +
		"102,2019-01-06 11:00:00,2019-01-06 11:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n"
	modern := modernHeader +
		"R201,docked_bike,2020-02-02 08:00:00,2020-02-02 08:05:00,Clark St & Addison St,10,Canal St & Madison St,11,,,,,member\n"

	sum, err := Run(context.Background(), testPipeline(t, legacy, modern))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Retained != 2 {
		t.Fatalf("retained %d; want 2", sum.Retained)
	}
	if sum.MaintenanceRows != 1 {
		t.Errorf("maintenance drops = %d; want 1", sum.MaintenanceRows)
	}
}

// The same ride id in both files counts once.
func TestRun_DeDupAcrossFiles(t *testing.T) {
	legacy := legacyHeader +
		"101,2019-03-31 23:50:00,2019-04-01 00:10:00,1,1200,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n"
	modern := modernHeader +
		"101,docked_bike,2019-03-31 23:50:00,2019-04-01 00:10:00,Clark St & Addison St,10,Canal St & Madison St,11,,,,,member\n"

	sum, err := Run(context.Background(), testPipeline(t, legacy, modern))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Retained != 1 || sum.Duplicates != 1 {
		t.Fatalf("retained=%d duplicates=%d; want 1 and 1", sum.Retained, sum.Duplicates)
	}
}

/*
TestRun_LabelPolicy verifies the unknown-label handling: strict aborts the
run with ErrUnknownLabel, lenient drops and counts the row.
*/
func TestRun_LabelPolicy(t *testing.T) {
	legacy := legacyHeader +
		"101,2019-01-06 10:00:00,2019-01-06 10:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Dependent,,\n" +
		"102,2019-01-06 11:00:00,2019-01-06 11:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n"
	modern := modernHeader +
		"R201,docked_bike,2020-02-02 08:00:00,2020-02-02 08:05:00,Clark St & Addison St,10,Canal St & Madison St,11,,,,,member\n"

	p := testPipeline(t, legacy, modern)
	if _, err := Run(context.Background(), p); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("strict run error = %v; want ErrUnknownLabel", err)
	}

	p.Cleaning.LabelPolicy = config.LabelPolicyLenient
	sum, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("lenient Run: %v", err)
	}
	if sum.Retained != 2 || sum.UnknownLabels != 1 {
		t.Fatalf("retained=%d unknown=%d; want 2 and 1", sum.Retained, sum.UnknownLabels)
	}
}

// A modern file without member_casual cannot be aligned; concatenation must
// fail with a schema mismatch instead of null-padding the column.
func TestRun_SchemaMismatch(t *testing.T) {
	legacy := legacyHeader +
		"101,2019-01-06 10:00:00,2019-01-06 10:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n"
	modern := "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id,end_station_name,end_station_id\n" +
		"R201,docked_bike,2020-02-02 08:00:00,2020-02-02 08:05:00,Clark St & Addison St,10,Canal St & Madison St,11\n"

	if _, err := Run(context.Background(), testPipeline(t, legacy, modern)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("error = %v; want ErrSchemaMismatch", err)
	}
}

/*
TestRun_ParsePolicy verifies malformed-row handling at the load stage: a
truncated row in an input is fatal with ErrParse by default, and only the
lenient parse policy downgrades it to a counted skip.
*/
func TestRun_ParsePolicy(t *testing.T) {
	legacy := legacyHeader +
		"101,2019-01-06 10:00:00,2019-01-06 10:10:00,1,600,10,Clark St & Addison St,11,Canal St & Madison St,Subscriber,,\n"
	modern := modernHeader +
		"R201,docked_bike,2020-02-02 08:00:00,2020-02-02 08:05:00,Clark St & Addison St,10,Canal St & Madison St,11,,,,,member\n" +
		"R202,docked_bike,2020-02-03 10:00:00\n" +
		"R203,docked_bike,2020-02-04 18:00:00,2020-02-04 18:45:00,State St & Randolph St,13,Clark St & Addison St,10,,,,,casual\n"

	p := testPipeline(t, legacy, modern)
	if _, err := Run(context.Background(), p); !errors.Is(err, ErrParse) {
		t.Fatalf("strict run error = %v; want ErrParse", err)
	}

	p.Inputs.ParsePolicy = config.ParsePolicyLenient
	sum, err := Run(context.Background(), p)
	if err != nil {
		t.Fatalf("lenient Run: %v", err)
	}
	if sum.ParseSkipped != 1 {
		t.Errorf("parse skips = %d; want 1", sum.ParseSkipped)
	}
	if sum.Retained != 3 {
		t.Errorf("retained %d; want 3", sum.Retained)
	}
}

// A missing input is fatal at the load stage with ErrNotFound, and the
// underlying not-exist error stays reachable through the wrap chain.
func TestRun_MissingInput(t *testing.T) {
	p := testPipeline(t, legacyHeader, modernHeader)
	p.Inputs.Legacy.Path = filepath.Join(t.TempDir(), "absent.csv")

	_, err := Run(context.Background(), p)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v; want fs.ErrNotExist in the chain", err)
	}
}
