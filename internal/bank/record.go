// Package bank normalizes heterogeneous question-bank spreadsheets into the
// canonical question model. Bank files come from many sources and disagree on
// column names, answer encodings and option counts; everything here exists to
// collapse those variants into one shape.
package bank

import "strings"

// Record is one raw spreadsheet row: a mapping of canonicalized column name
// to cell text. Missing columns are absent keys; empty and null-marker cells
// are treated the same as absent by the resolvers.
type Record map[string]string

// RecordSet is the rows of one sheet, with the sheet name kept as a fallback
// tag for rows that carry no chapter column.
type RecordSet struct {
	Sheet   string
	Records []Record
}

// CanonKey canonicalizes a column name: trims surrounding whitespace and
// drops embedded spaces and newlines, so cosmetic header variants collide.
func CanonKey(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// cellEmpty reports whether a cell value is empty or a null marker the way
// spreadsheet exports tend to encode missing data.
func cellEmpty(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return true
	}
	switch strings.ToLower(t) {
	case "nan", "none", "null", "n/a":
		return true
	}
	return false
}

// Get returns the trimmed cell for the first alias with a usable value.
// Aliases are tried in priority order; empty and null-marker cells do not
// satisfy a lookup.
func (r Record) Get(aliases ...string) (string, bool) {
	for _, a := range aliases {
		if v, ok := r[a]; ok && !cellEmpty(v) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Canonicalized returns a copy of the record with every key canonicalized.
// Records built by the workbook reader are already canonical; this exists so
// Normalize accepts records assembled by other collaborators too.
func (r Record) Canonicalized() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[CanonKey(k)] = v
	}
	return out
}
