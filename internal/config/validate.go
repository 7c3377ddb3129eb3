// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "inputs.legacy.path").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline; it returns a slice of Issue values and the
// caller decides whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{SeverityWarning, "job", "empty; logs and metrics will use the default job name"})
	}

	if strings.TrimSpace(p.Inputs.Legacy.Path) == "" {
		issues = append(issues, Issue{SeverityError, "inputs.legacy.path", "required"})
	}
	if strings.TrimSpace(p.Inputs.Modern.Path) == "" {
		issues = append(issues, Issue{SeverityError, "inputs.modern.path", "required"})
	}
	if p.Inputs.Legacy.Path != "" && p.Inputs.Legacy.Path == p.Inputs.Modern.Path {
		issues = append(issues, Issue{SeverityError, "inputs", "legacy and modern point at the same file"})
	}
	switch p.Inputs.ParsePolicy {
	case "", ParsePolicyStrict, ParsePolicyLenient:
	default:
		issues = append(issues, Issue{SeverityError, "inputs.parse_policy",
			fmt.Sprintf("unknown policy %q (want %q or %q)", p.Inputs.ParsePolicy, ParsePolicyStrict, ParsePolicyLenient)})
	}

	switch p.Cleaning.LabelPolicy {
	case "", LabelPolicyStrict, LabelPolicyLenient:
	default:
		issues = append(issues, Issue{SeverityError, "cleaning.label_policy",
			fmt.Sprintf("unknown policy %q (want %q or %q)", p.Cleaning.LabelPolicy, LabelPolicyStrict, LabelPolicyLenient)})
	}
	if len(p.Cleaning.DedupKeys) == 0 {
		issues = append(issues, Issue{SeverityWarning, "cleaning.dedup_keys", "empty; duplicate rides will not be collapsed"})
	}

	if strings.TrimSpace(p.Output.SummaryCSV) == "" {
		issues = append(issues, Issue{SeverityError, "output.summary_csv", "required"})
	}
	if p.Output.ChartsXLSX != "" && !strings.EqualFold(filepath.Ext(p.Output.ChartsXLSX), ".xlsx") {
		issues = append(issues, Issue{SeverityWarning, "output.charts_xlsx", "extension is not .xlsx"})
	}

	switch p.Metrics.Backend {
	case "", "none", "pushgateway", "datadog":
	default:
		issues = append(issues, Issue{SeverityWarning, "metrics.backend",
			fmt.Sprintf("unknown backend %q; metrics will be disabled", p.Metrics.Backend)})
	}
	if p.Metrics.Backend == "datadog" && p.Metrics.Options.String("statsd_addr", "") == "" {
		issues = append(issues, Issue{SeverityError, "metrics.options.statsd_addr", "required for the datadog backend"})
	}

	return issues
}
