// Package records defines the row representation shared by every pipeline
// stage. A Record is a column-name -> value map; values are strings as parsed,
// and become typed (time.Time, float64) as coercion and derivation transforms
// run over them. Missing and empty cells are represented as nil so that the
// row-wise union of two tables with different column sets behaves like an
// outer join.
package records

import "time"

// Record is a single trip row keyed by canonical column name.
type Record map[string]any

// String returns the string value for key, or "" when the cell is missing,
// nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Time returns the time.Time value for key and whether one is present.
// Cells that have not been coerced yet (still strings) report false.
func (r Record) Time(key string) (time.Time, bool) {
	if v, ok := r[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Float returns the float64 value for key and whether one is present.
func (r Record) Float(key string) (float64, bool) {
	if v, ok := r[key]; ok {
		if f, ok := v.(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// Has reports whether key is present with a non-nil, non-empty value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}
