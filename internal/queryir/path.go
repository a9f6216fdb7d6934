package queryir

import (
	"regexp"
	"strings"
)

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// IsColumn reports whether s is a plain or table-qualified column name.
func IsColumn(s string) bool {
	return columnPattern.MatchString(s)
}

// Expr renders the JSON navigation expression for the path. Every segment
// but the last navigates into a nested value (->); the last one extracts
// text (->>). The first segment is the column and stays unquoted, so it
// must satisfy IsColumn before the expression reaches SQL.
//
//	[meta]             meta
//	[meta tags]        meta->>'tags'
//	[meta a b]         meta->'a'->>'b'
func (p JSONPathPredicate) Expr() string {
	var b strings.Builder
	last := len(p.Path) - 1
	for i, segment := range p.Path {
		if i == 0 {
			b.WriteString(segment)
		} else {
			b.WriteString(quoteKey(segment))
		}

		switch {
		case i == last-1:
			b.WriteString("->>")
		case i != last:
			b.WriteString("->")
		}
	}
	return b.String()
}

// LocaleExpr renders the existence check for one key of the locale column.
func LocaleExpr(locale string) string {
	return "locale->>" + quoteKey(locale) + " IS NOT NULL"
}

// quoteKey quotes a JSON object key as an SQL string literal.
func quoteKey(key string) string {
	return "'" + strings.ReplaceAll(key, "'", "''") + "'"
}
