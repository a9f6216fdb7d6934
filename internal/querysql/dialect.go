package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax and dialect-specific operators.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect parses a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case SQLite:
		return SQLite, nil
	case Postgres, "postgresql", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (want sqlite or postgres)", s)
	}
}

// Placeholder returns the n-th (1-based) bind placeholder.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// overlaps renders an array overlap test. SQLite stores arrays as JSON
// text.
func (d Dialect) overlaps(column string, placeholders []string) string {
	list := strings.Join(placeholders, ", ")
	if d == Postgres {
		return fmt.Sprintf("%s && ARRAY[%s]", column, list)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value IN (%s))", column, list)
}
