package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"tripstats/internal/analyze"
)

// WriteChartWorkbook writes the grouped summary into an xlsx workbook with
// two clustered bar charts: ride count per weekday and mean ride duration per
// weekday, one bar series per rider segment. The workbook at path is
// overwritten.
func WriteChartWorkbook(path string, rows []analyze.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeChartSheet(f, "Rides", "Number of rides by weekday", rows, func(r analyze.SummaryRow) any {
		return r.Count
	}); err != nil {
		return err
	}
	if err := writeChartSheet(f, "Durations", "Mean ride duration (seconds) by weekday", rows, func(r analyze.SummaryRow) any {
		return r.MeanDuration
	}); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on the rides chart.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save chart workbook: %w", err)
	}
	return nil
}

// writeChartSheet lays out one pivoted value table (weekday rows, one column
// per segment) and attaches a clustered column chart over it.
func writeChartSheet(f *excelize.File, sheet, title string, rows []analyze.SummaryRow, value func(analyze.SummaryRow) any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}

	segments, weekdays := axes(rows)

	if err := f.SetCellValue(sheet, "A1", "day_of_week"); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	for ci, seg := range segments {
		cell, _ := excelize.CoordinatesToCellName(ci+2, 1)
		if err := f.SetCellValue(sheet, cell, seg); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	for ri, day := range weekdays {
		cell, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := f.SetCellValue(sheet, cell, day); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	// Observed cells only; a (segment, weekday) pair absent from the summary
	// leaves a gap in the table and the chart.
	for _, r := range rows {
		ci := indexOf(segments, r.Segment)
		ri := indexOf(weekdays, r.Weekday)
		if ci < 0 || ri < 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(ci+2, ri+2)
		if err := f.SetCellValue(sheet, cell, value(r)); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	series := make([]excelize.ChartSeries, 0, len(segments))
	lastRow := len(weekdays) + 1
	for ci := range segments {
		nameCell, _ := excelize.CoordinatesToCellName(ci+2, 1)
		firstVal, _ := excelize.CoordinatesToCellName(ci+2, 2)
		lastVal, _ := excelize.CoordinatesToCellName(ci+2, lastRow)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s", sheet, cellRef(nameCell)),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, lastRow),
			Values:     fmt.Sprintf("%s!$%s:$%s", sheet, cellRef(firstVal), cellRef(lastVal)),
		})
	}

	chart := &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "top"},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: false,
		},
	}
	if err := f.AddChart(sheet, "E2", chart); err != nil {
		return fmt.Errorf("add chart to %s: %w", sheet, err)
	}
	return nil
}

// axes returns the distinct segments (sorted) and weekdays (Sunday-first
// rank order) present in the summary.
func axes(rows []analyze.SummaryRow) (segments, weekdays []string) {
	segSeen := map[string]bool{}
	daySeen := map[string]bool{}
	for _, r := range rows {
		if !segSeen[r.Segment] {
			segSeen[r.Segment] = true
			segments = append(segments, r.Segment)
		}
		if !daySeen[r.Weekday] {
			daySeen[r.Weekday] = true
			weekdays = append(weekdays, r.Weekday)
		}
	}
	sort.Strings(segments)
	sort.Slice(weekdays, func(i, j int) bool {
		return analyze.WeekdayRank(weekdays[i]) < analyze.WeekdayRank(weekdays[j])
	})
	return segments, weekdays
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

// cellRef rewrites "B2" as "B$2" so series references are absolute.
func cellRef(cell string) string {
	for i := 0; i < len(cell); i++ {
		if cell[i] >= '0' && cell[i] <= '9' {
			return cell[:i] + "$" + cell[i:]
		}
	}
	return cell
}
