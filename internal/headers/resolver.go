// Package headers maps arbitrary spreadsheet column names onto canonical fields.
package headers

import (
	"strings"
	"unicode"

	"github.com/Veraticus/gross-to-net/internal/model"
)

// Resolution is the outcome of matching a header row against the alias table.
type Resolution struct {
	Columns map[model.Field]string // canonical field -> header as it appears in the sheet
	Missing []model.Field          // mandatory fields with no matching header, in table order
}

// Column returns the header bound to f.
func (r Resolution) Column(f model.Field) (string, bool) {
	col, ok := r.Columns[f]
	return col, ok
}

// MissingStringFields returns the unresolved identity fields.
func (r Resolution) MissingStringFields() []model.Field {
	var out []model.Field
	for _, f := range r.Missing {
		if f != model.FieldGross {
			out = append(out, f)
		}
	}
	return out
}

// MissingGross reports whether no gross sales column was found.
func (r Resolution) MissingGross() bool {
	for _, f := range r.Missing {
		if f == model.FieldGross {
			return true
		}
	}
	return false
}

// Labels converts fields to their human-readable names.
func Labels(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label()
	}
	return out
}

// Canonicalize lower-cases s and drops everything that is not a letter or digit, so
// "Gross Sales", "gross_sales" and " GROSS-SALES " compare equal.
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve matches the given headers against the alias table.
func Resolve(headers []string) Resolution {
	return ResolveWith(Fields, headers)
}

// ResolveWith matches headers against a custom alias table.
func ResolveWith(specs []Spec, headers []string) Resolution {
	present := make(map[string]string, len(headers))
	for _, h := range headers {
		key := Canonicalize(h)
		if key == "" {
			continue
		}
		if _, seen := present[key]; !seen {
			present[key] = h
		}
	}

	res := Resolution{Columns: make(map[model.Field]string, len(specs))}
	for _, spec := range specs {
		for _, alias := range spec.Aliases {
			if header, ok := present[Canonicalize(alias)]; ok {
				res.Columns[spec.Field] = header
				break
			}
		}
		if _, ok := res.Columns[spec.Field]; !ok && spec.Mandatory {
			res.Missing = append(res.Missing, spec.Field)
		}
	}
	return res
}
