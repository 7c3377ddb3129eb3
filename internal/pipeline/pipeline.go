// Package pipeline wires the whole run together: load the two quarterly
// exports, unify and concatenate them, clean the combined table, aggregate,
// and report. Execution is linear; each stage either completes or fails the
// run with its stage name attached. The only concurrency is the load stage,
// where the two independent input files parse in parallel.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tripstats/internal/analyze"
	"tripstats/internal/config"
	"tripstats/internal/metrics"
	csvparser "tripstats/internal/parser/csv"
	"tripstats/internal/report"
	"tripstats/internal/schema"
	"tripstats/internal/transformer"
	"tripstats/internal/transformer/builtin"
	"tripstats/pkg/records"
)

// Summary is the run audit: where every input row went, plus the aggregates
// the reporter rendered. Fatal errors abort the run; everything here is the
// non-fatal data-quality record.
type Summary struct {
	LegacyRows int
	ModernRows int

	ParseSkipped         int
	MissingRequired      int
	UnknownLabels        int
	UnparseableTimes     int
	Duplicates           int
	NonPositiveDurations int
	MaintenanceRows      int
	Retained             int

	Global    analyze.Stats
	BySegment map[string]analyze.Stats
	Grouped   []analyze.SummaryRow
}

// rejectLogLimit caps per-row rejection log lines for one run.
const rejectLogLimit = 50

// Run executes the full analysis described by p. The returned Summary is
// valid only when err is nil.
func Run(ctx context.Context, p config.Pipeline) (*Summary, error) {
	job := p.Job
	if job == "" {
		job = "tripstats"
	}

	sum := &Summary{}

	// Load. The two files are independent, so they parse concurrently; each
	// parse is itself a sequential stream.
	start := time.Now()
	legacy, modern, err := loadInputs(ctx, p.Inputs)
	metrics.RecordStep(job, string(StageLoad), err, time.Since(start))
	if err != nil {
		return nil, stageErr(StageLoad, err)
	}
	sum.LegacyRows = len(legacy.rows)
	sum.ModernRows = len(modern.rows)
	sum.ParseSkipped = legacy.res.Skipped + modern.res.Skipped
	metrics.RecordRows(job, "loaded", int64(sum.LegacyRows+sum.ModernRows))
	metrics.RecordRows(job, "parse_skipped", int64(sum.ParseSkipped))
	log.WithFields(log.Fields{
		"legacy_rows":   sum.LegacyRows,
		"modern_rows":   sum.ModernRows,
		"parse_skipped": sum.ParseSkipped,
	}).Info("inputs loaded")

	// Unify: the legacy header map already renamed at parse time; verify both
	// tables expose every canonical column before concatenation.
	start = time.Now()
	err = checkAlignment(legacy.res.Header, modern.res.Header)
	metrics.RecordStep(job, string(StageUnify), err, time.Since(start))
	if err != nil {
		return nil, stageErr(StageUnify, err)
	}

	// Combine and clean.
	start = time.Now()
	combined := make([]records.Record, 0, len(legacy.rows)+len(modern.rows))
	combined = append(combined, legacy.rows...)
	combined = append(combined, modern.rows...)

	cleaned, err := clean(combined, p.Cleaning, sum)
	metrics.RecordStep(job, string(StageClean), err, time.Since(start))
	if err != nil {
		return nil, stageErr(StageClean, err)
	}
	sum.Retained = len(cleaned)
	recordCleanRows(job, sum)
	log.WithFields(log.Fields{
		"missing_required":       sum.MissingRequired,
		"unknown_labels":         sum.UnknownLabels,
		"unparseable_times":      sum.UnparseableTimes,
		"duplicates":             sum.Duplicates,
		"non_positive_durations": sum.NonPositiveDurations,
		"maintenance_rows":       sum.MaintenanceRows,
		"retained":               sum.Retained,
	}).Info("table cleaned")

	// Aggregate.
	start = time.Now()
	sum.Global = analyze.Describe(analyze.Durations(cleaned))
	sum.BySegment = describeSegments(cleaned)
	sum.Grouped = analyze.GroupBySegmentWeekday(cleaned)
	metrics.RecordStep(job, string(StageAggregate), nil, time.Since(start))
	logStats("all", sum.Global)
	for _, seg := range sortedKeys(sum.BySegment) {
		logStats(seg, sum.BySegment[seg])
	}

	// Grouped counts must account for every retained row.
	var grouped int64
	for _, r := range sum.Grouped {
		grouped += r.Count
	}
	if grouped != int64(sum.Retained) {
		return nil, stageErr(StageAggregate,
			fmt.Errorf("grouped counts sum to %d, retained %d", grouped, sum.Retained))
	}

	// Report.
	start = time.Now()
	err = render(p.Output, sum.Grouped)
	metrics.RecordStep(job, string(StageReport), err, time.Since(start))
	if err != nil {
		return nil, stageErr(StageReport, err)
	}

	return sum, nil
}

// table pairs parsed rows with their parse metadata.
type table struct {
	rows []records.Record
	res  csvparser.Result
}

// loadInputs parses the two input files concurrently. The legacy file gets
// the header rename map; the modern file's headers are already canonical.
// Malformed rows are fatal unless the lenient parse policy is configured.
func loadInputs(ctx context.Context, in config.Inputs) (legacy, modern table, err error) {
	lenient := in.ParsePolicy == config.ParsePolicyLenient
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = loadFile(in.Legacy.Path, schema.LegacyHeaderMap, lenient)
		return err
	})
	g.Go(func() error {
		var err error
		modern, err = loadFile(in.Modern.Path, nil, lenient)
		return err
	})
	err = g.Wait()
	return legacy, modern, err
}

// loadFile parses one delimited input file into records.
func loadFile(path string, headerMap map[string]string, lenient bool) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table{}, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()

	p := csvparser.NewParser(csvparser.Options{
		HasHeader: true,
		TrimSpace: true,
		HeaderMap: headerMap,
		Lenient:   lenient,
	})
	rows, res, err := p.Parse(f)
	if err != nil {
		return table{}, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return table{rows: rows, res: res}, nil
}

// checkAlignment verifies that both unified headers carry every canonical
// required column. Extra source-specific columns are fine; the cleaner prunes
// them after concatenation.
func checkAlignment(headers ...[]string) error {
	for _, header := range headers {
		present := make(map[string]bool, len(header))
		for _, c := range header {
			present[c] = true
		}
		var missing []string
		for _, c := range schema.RequiredColumns {
			if !present[c] {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing columns %v", ErrSchemaMismatch, missing)
		}
	}
	return nil
}

// clean runs the transformer chain over the combined table and accumulates
// the per-reason drop counts into sum. Under the strict label policy an
// unknown segment label fails the run after the chain completes.
func clean(combined []records.Record, c config.Cleaning, sum *Summary) ([]records.Record, error) {
	var rejected int
	reject := func(rr transformer.RejectedRow) {
		if rejected < rejectLogLimit {
			log.WithFields(log.Fields{
				"stage":  rr.Stage,
				"reason": rr.Reason,
			}).Debug("row rejected")
		}
		rejected++
	}

	require := &builtin.Require{Fields: []string{
		schema.ColRideID,
		schema.ColStartedAt,
		schema.ColEndedAt,
		schema.ColMemberCasual,
	}}
	relabel := &builtin.Relabel{
		Field:  schema.ColMemberCasual,
		Map:    schema.LabelMap,
		Reject: reject,
	}
	derive := &builtin.Derive{Reject: reject}
	dedup := &builtin.DeDup{Keys: c.DedupKeys}
	filter := &builtin.Filter{Sentinel: schema.MaintenanceStation}

	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Prune{Columns: schema.DropColumns},
		require,
		relabel,
		builtin.CoerceTime{
			Fields:  []string{schema.ColStartedAt, schema.ColEndedAt},
			Layouts: schema.TimestampLayouts,
		},
		derive,
		dedup,
		filter,
	}
	cleaned := chain.Apply(combined)

	sum.MissingRequired = require.Dropped
	sum.UnknownLabels = relabel.Unknown
	sum.UnparseableTimes = derive.Unparsed
	sum.Duplicates = dedup.Dropped
	sum.NonPositiveDurations = filter.NonPositive
	sum.MaintenanceRows = filter.Maintenance

	policy := c.LabelPolicy
	if policy == "" {
		policy = config.LabelPolicyStrict
	}
	if policy == config.LabelPolicyStrict && relabel.Unknown > 0 {
		return nil, fmt.Errorf("%w: %d rows (use the lenient label policy to drop them instead)",
			ErrUnknownLabel, relabel.Unknown)
	}

	return cleaned, nil
}

// render writes every configured reporter artifact.
func render(out config.Output, rows []analyze.SummaryRow) error {
	if err := report.WriteSummaryCSV(out.SummaryCSV, rows); err != nil {
		return err
	}
	log.WithField("path", out.SummaryCSV).Info("summary exported")

	if out.ChartsXLSX != "" {
		if err := report.WriteChartWorkbook(out.ChartsXLSX, rows); err != nil {
			return err
		}
		log.WithField("path", out.ChartsXLSX).Info("chart workbook written")
	}
	if out.TerminalCharts {
		report.RenderTerminalCharts(os.Stdout, rows)
	}
	return nil
}

// describeSegments computes per-segment descriptive stats.
func describeSegments(recs []records.Record) map[string]analyze.Stats {
	out := make(map[string]analyze.Stats)
	for seg, durations := range analyze.DurationsBySegment(recs) {
		out[seg] = analyze.Describe(durations)
	}
	return out
}

// recordCleanRows pushes the clean-stage drop counters as metrics.
func recordCleanRows(job string, sum *Summary) {
	metrics.RecordRows(job, "missing_required", int64(sum.MissingRequired))
	metrics.RecordRows(job, "unknown_label", int64(sum.UnknownLabels))
	metrics.RecordRows(job, "unparseable_time", int64(sum.UnparseableTimes))
	metrics.RecordRows(job, "duplicate", int64(sum.Duplicates))
	metrics.RecordRows(job, "non_positive_duration", int64(sum.NonPositiveDurations))
	metrics.RecordRows(job, "maintenance_station", int64(sum.MaintenanceRows))
	metrics.RecordRows(job, "retained", int64(sum.Retained))
}

// logStats logs one ride-length description in seconds.
func logStats(segment string, s analyze.Stats) {
	log.WithFields(log.Fields{
		"segment": segment,
		"count":   s.Count,
		"mean":    s.Mean,
		"median":  s.Median,
		"min":     s.Min,
		"q1":      s.Q1,
		"q3":      s.Q3,
		"max":     s.Max,
	}).Info("ride length (seconds)")
}

// sortedKeys returns m's keys in ascending order for deterministic logging.
func sortedKeys(m map[string]analyze.Stats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
