// Package report renders the grouped summary: a flat CSV export, an xlsx
// workbook with bar charts, and a styled terminal rendering.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"tripstats/internal/analyze"
)

// summaryHeader is the column order of the exported summary file.
var summaryHeader = []string{"member_casual", "day_of_week", "number_of_rides", "average_duration"}

// WriteSummaryCSV writes the grouped summary to path with a header row,
// overwriting any existing file. Mean durations are written with full float64
// round-trip precision so re-reading the file reproduces the values exactly.
func WriteSummaryCSV(path string, rows []analyze.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Segment,
			r.Weekday,
			strconv.FormatInt(r.Count, 10),
			strconv.FormatFloat(r.MeanDuration, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary file: %w", err)
	}
	return f.Close()
}

// ReadSummaryCSV reads a file written by WriteSummaryCSV back into rows.
// Used by the round-trip checks and handy for downstream tooling.
func ReadSummaryCSV(path string) ([]analyze.SummaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	raw, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read summary file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("summary file %s: missing header", path)
	}

	rows := make([]analyze.SummaryRow, 0, len(raw)-1)
	for i, rec := range raw[1:] {
		if len(rec) != len(summaryHeader) {
			return nil, fmt.Errorf("summary file row %d: want %d columns, got %d", i+2, len(summaryHeader), len(rec))
		}
		count, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("summary file row %d: number_of_rides: %w", i+2, err)
		}
		mean, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("summary file row %d: average_duration: %w", i+2, err)
		}
		rows = append(rows, analyze.SummaryRow{
			Segment:      rec[0],
			Weekday:      rec[1],
			Count:        count,
			MeanDuration: mean,
		})
	}
	return rows, nil
}
