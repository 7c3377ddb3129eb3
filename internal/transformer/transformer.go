// Package transformer defines the in-memory cleaning chain run over the
// combined trip table. Each step is a Transformer; the pipeline composes them
// into a Chain and applies them in order. Steps mutate records in place and
// may drop rows; they never abort the run themselves. Fatal decisions (such
// as a strict label policy) are made by the caller from the counts and
// rejection sinks the steps expose.
package transformer

import "tripstats/pkg/records"

// Transformer applies one cleaning step to a batch of records.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order, feeding each one's output into the
// next.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// RejectedRow is delivered to a step's Reject sink when that step drops a row
// for a data-quality reason the caller may want to audit or escalate.
type RejectedRow struct {
	Raw    records.Record
	Reason string
	Stage  string
}
