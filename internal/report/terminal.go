package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tripstats/internal/analyze"
)

// maxBarWidth is the widest bar rendered, in cells.
const maxBarWidth = 40

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	weekdayStyle = lipgloss.NewStyle().Width(10)
	segmentStyle = lipgloss.NewStyle().Width(8).Faint(true)

	segmentColors = map[string]lipgloss.Style{
		"member": lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		"casual": lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange
	}
)

// RenderTerminalCharts writes both summary charts to w as horizontal bar
// charts, weekdays Sunday-first, one colored bar per segment.
func RenderTerminalCharts(w io.Writer, rows []analyze.SummaryRow) {
	renderChart(w, "Number of rides by weekday", rows, func(r analyze.SummaryRow) (float64, string) {
		return float64(r.Count), fmt.Sprintf("%d", r.Count)
	})
	renderChart(w, "Mean ride duration by weekday", rows, func(r analyze.SummaryRow) (float64, string) {
		return r.MeanDuration, fmt.Sprintf("%.1fs", r.MeanDuration)
	})
}

// renderChart draws one chart. Bars scale linearly against the largest value
// in the chart; every non-zero value gets at least one cell.
func renderChart(w io.Writer, title string, rows []analyze.SummaryRow, value func(analyze.SummaryRow) (float64, string)) {
	var max float64
	for _, r := range rows {
		if v, _ := value(r); v > max {
			max = v
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(title))

	_, weekdays := axes(rows)
	for _, day := range weekdays {
		for _, r := range rows {
			if r.Weekday != day {
				continue
			}
			v, label := value(r)
			fmt.Fprintf(w, "%s %s %s %s\n",
				weekdayStyle.Render(day),
				segmentStyle.Render(r.Segment),
				barStyle(r.Segment).Render(bar(v, max)),
				label,
			)
		}
	}
}

func barStyle(segment string) lipgloss.Style {
	if s, ok := segmentColors[segment]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func bar(v, max float64) string {
	if max <= 0 || v <= 0 {
		return ""
	}
	n := int(v / max * maxBarWidth)
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}
