// Package config defines the canonical, JSON-serializable configuration model
// for a trip analysis run. It is intentionally small, explicit, and
// dependency-free so that run files can be loaded from disk and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of run files.
//  3. Minimalism: decoding is performed by the standard library, with a light
//     Options helper for typed access to backend-specific settings.
//
// Example (trimmed):
//
//	{
//	  "job":    "divvy_2019q1_2020q1",
//	  "inputs": {
//	    "legacy": { "path": "data/Divvy_Trips_2019_Q1.csv" },
//	    "modern": { "path": "data/Divvy_Trips_2020_Q1.csv" }
//	  },
//	  "cleaning": { "label_policy": "strict", "dedup_keys": ["ride_id"] },
//	  "output":   { "summary_csv": "out/avg_ride_length.csv" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Label policies for unrecognized rider-segment values.
const (
	// LabelPolicyStrict aborts the run when a label outside the known set
	// appears.
	LabelPolicyStrict = "strict"
	// LabelPolicyLenient drops and counts such rows but keeps running.
	LabelPolicyLenient = "lenient"
)

// Parse policies for malformed input rows.
const (
	// ParsePolicyStrict fails the load stage on the first malformed row.
	ParsePolicyStrict = "strict"
	// ParsePolicyLenient skips and counts malformed rows but keeps running.
	ParsePolicyLenient = "lenient"
)

// Pipeline describes one full analysis run. It is the top-level object
// decoded from a run file.
type Pipeline struct {
	// Job names the run; it labels logs and metrics.
	Job string `json:"job"`

	// Inputs locates the two quarterly trip exports.
	Inputs Inputs `json:"inputs"`

	// Cleaning tunes the combine/clean stage.
	Cleaning Cleaning `json:"cleaning"`

	// Output locates every artifact the reporter writes.
	Output Output `json:"output"`

	// Metrics selects and configures an optional metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Inputs holds the two source files. Legacy is the older export whose headers
// are renamed to the modern convention at load time.
type Inputs struct {
	Legacy InputFile `json:"legacy"`
	Modern InputFile `json:"modern"`

	// ParsePolicy is "strict" (default) or "lenient"; see the policy consts.
	ParsePolicy string `json:"parse_policy"`
}

// InputFile locates one delimited input file.
type InputFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// Cleaning tunes the combine/clean stage.
type Cleaning struct {
	// LabelPolicy is "strict" (default) or "lenient"; see the policy consts.
	LabelPolicy string `json:"label_policy"`

	// DedupKeys names the columns forming the ride business key. Empty
	// disables de-duplication.
	DedupKeys []string `json:"dedup_keys"`
}

// Output locates the reporter's artifacts.
type Output struct {
	// SummaryCSV is the grouped-summary export path. Required; overwritten.
	SummaryCSV string `json:"summary_csv"`

	// ChartsXLSX, when non-empty, is where the chart workbook is written.
	ChartsXLSX string `json:"charts_xlsx"`

	// TerminalCharts renders the two bar charts to stdout as well.
	TerminalCharts bool `json:"terminal_charts"`
}

// Metrics selects a metrics backend. Backend-specific settings ride in the
// free-form Options bag, read with the typed accessors below.
type Metrics struct {
	// Backend is "pushgateway", "datadog", or "" / "none" for disabled.
	Backend string `json:"backend"`

	// Options carries backend settings, e.g. gateway_url for pushgateway or
	// statsd_addr and namespace for datadog.
	Options Options `json:"options"`
}

// Load reads and decodes a run file from path.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a run file from r.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns the provided default when a key is absent
// or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64;
// both float64 and int values are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Strings returns the []string value for key or def. JSON arrays decode as
// []any; non-string elements are skipped.
func (o Options) Strings(key string, def []string) []string {
	v, ok := o[key]
	if !ok {
		return def
	}
	arr, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
