// Package csv parses a quarterly trip export into records. Parsing is
// streaming (row at a time through encoding/csv) and headers are normalized
// to canonical column names via an optional HeaderMap. A malformed body row
// is fatal unless the Lenient option is set, in which case such rows are
// counted and skipped.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"tripstats/pkg/records"
)

// Options configures the parser. All fields are optional; zero values get
// sensible defaults.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and no header is present, fixes the field
	// count per record.
	ExpectedFields int

	// Lenient skips and counts malformed body rows instead of failing the
	// parse on the first one.
	Lenient bool

	// HeaderMap maps source header names to canonical column names. Headers
	// without an entry fall back to lowercase/underscore normalization. Only
	// applies when HasHeader is true.
	HeaderMap map[string]string
}

// Parser parses delimited input according to Options. It is safe to reuse
// across inputs but is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Result carries per-file parse metadata alongside the rows.
type Result struct {
	// Header holds the canonical column names, in file order.
	Header []string

	// Skipped counts rows dropped for parse errors or width mismatches.
	// Always zero unless Lenient is set.
	Skipped int
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps the per-row skip log lines emitted for one file.
const skipLogLimit = 400

// Parse consumes rows from r and returns them as records keyed by canonical
// column name, along with parse metadata. Empty cells become nil so the later
// outer union treats them as missing. A header that cannot be read is always
// a hard error; malformed body rows are hard errors too unless Lenient is
// set, in which case they soft-fail with a counted skip.
func (p *Parser) Parse(r io.Reader) ([]records.Record, Result, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	var res Result

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, res, fmt.Errorf("read csv header: %w", err)
		}
		res.Header = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		res.Header = make([]string, p.opt.ExpectedFields)
		for i := range res.Header {
			res.Header[i] = fmt.Sprintf("col_%d", i)
		}
	}

	var out []records.Record
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !p.opt.Lenient {
				return nil, res, fmt.Errorf("read row %d: %w", line, err)
			}
			if res.Skipped < skipLogLimit {
				log.Debugf("skipping row %d: %v", line, err)
			}
			res.Skipped++
			continue
		}

		// encoding/csv already enforces a uniform width once the header is
		// read; this guards the headerless ExpectedFields case.
		if len(res.Header) > 0 && len(row) != len(res.Header) {
			if !p.opt.Lenient {
				return nil, res, fmt.Errorf("row %d: expected %d fields, got %d", line, len(res.Header), len(row))
			}
			if res.Skipped < skipLogLimit {
				log.Debugf("skipping row %d: expected %d fields, got %d", line, len(res.Header), len(row))
			}
			res.Skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, res.Header)] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	return out, res, nil
}

// keyFor returns the column key for index idx, using the header when
// available, otherwise synthesizing a "col_N" name.
func keyFor(idx int, header []string) string {
	if idx < len(header) && header[idx] != "" {
		return header[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical column names using HeaderMap when
// provided, with lowercase/underscore normalization as the fallback. A UTF-8
// BOM on the first cell is stripped.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
