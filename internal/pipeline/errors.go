package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the pipeline stage an error escaped from. Every fatal error is
// wrapped with its stage so the CLI can report where the run died.
type Stage string

const (
	StageLoad      Stage = "load"
	StageUnify     Stage = "unify"
	StageClean     Stage = "clean"
	StageAggregate Stage = "aggregate"
	StageReport    Stage = "report"
)

// ErrNotFound reports that an input file could not be opened. It wraps the
// underlying open error, so errors.Is also matches fs.ErrNotExist.
var ErrNotFound = errors.New("input not found")

// ErrParse reports malformed input content: an unreadable header, a row that
// does not parse, or an inconsistent column count. Fatal under the default
// strict parse policy; the lenient policy downgrades body-row problems to
// counted skips.
var ErrParse = errors.New("malformed input")

// ErrSchemaMismatch reports that the unified tables cannot be concatenated:
// a required canonical column is missing from one of them. Concatenation must
// fail rather than silently null-pad a core column.
var ErrSchemaMismatch = errors.New("schema mismatch")

// ErrUnknownLabel reports that rows carried a rider-segment label outside the
// known set while the strict label policy was in force.
var ErrUnknownLabel = errors.New("unrecognized segment label")

// stageErr wraps err with the stage it escaped from.
func stageErr(s Stage, err error) error {
	return fmt.Errorf("stage %s: %w", s, err)
}
