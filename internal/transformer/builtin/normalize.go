// Package builtin contains the reusable cleaning steps the trip pipeline
// composes into its transformer chain.
package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tripstats/pkg/records"
)

// Normalize canonicalizes every string cell: NFC normalization, removal of
// zero-width/format characters, NBSP to ASCII space, and whitespace trim.
// Station names in the quarterly exports occasionally carry NBSPs and stray
// format characters from upstream spreadsheet tooling.
type Normalize struct{}

// nbsp is U+00A0 NO-BREAK SPACE.
const nbsp = "\u00a0"

// cleaner strips Unicode format characters (Cf covers ZWSP, ZWNBSP and
// friends) and recomposes to NFC so equal-looking station names compare equal.
var cleaner = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Cf)), norm.NFC)

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if out, _, err := transform.String(cleaner, s); err == nil {
				s = out
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in
}
