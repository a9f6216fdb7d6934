package grammar

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// Operator tiers for comparison detection. Two-character operators are
// checked first so that ">=" is never read as ">".
var (
	operatorTier1 = []queryir.Operator{queryir.OpGreaterEqual, queryir.OpLessEqual, queryir.OpNotEqual}
	operatorTier2 = []queryir.Operator{queryir.OpLess, queryir.OpGreater}
)

// ParseOperand compiles one comparator token for column into a leaf
// predicate. It never returns a Group and never fails.
//
// Branches are tried in order:
//  1. "<>" and "|"   OR-marked Between (first "|" removed from the low bound)
//  2. "<>"           Between
//  3. "|"            OR-marked Equals (first "|" removed)
//  4. "%"            Like
//  5. {column}       RawJSONEquals on the unwrapped column
//  6. operator scan  Compare, or Equals when no operator is present
func ParseOperand(column, token string) queryir.Predicate {
	hasRange := strings.Contains(token, "<>")
	hasPipe := strings.Contains(token, "|")

	switch {
	case hasRange && hasPipe:
		lo, hi := splitRange(token)
		return queryir.Between{Column: column, Lo: strings.Replace(lo, "|", "", 1), Hi: hi, Or: true}
	case hasRange:
		lo, hi := splitRange(token)
		return queryir.Between{Column: column, Lo: lo, Hi: hi}
	case hasPipe:
		return queryir.Equals{Column: column, Value: strings.Replace(token, "|", "", 1), Or: true}
	case strings.Contains(token, "%"):
		return queryir.Like{Column: column, Pattern: token}
	case isRawColumn(column):
		return queryir.RawJSONEquals{Expr: column[1 : len(column)-1], Value: token}
	}

	op, value, ok := scanOperators(token, operatorTier1)
	if !ok {
		op, value, ok = scanOperators(token, operatorTier2)
	}
	if !ok {
		return queryir.Equals{Column: column, Value: token}
	}
	return queryir.Compare{Column: column, Op: op, Value: value}
}

// splitRange returns the first two "<>"-separated parts of token. Parts
// after the second are ignored.
func splitRange(token string) (lo, hi string) {
	parts := strings.Split(token, "<>")
	return parts[0], parts[1]
}

func isRawColumn(column string) bool {
	return len(column) >= 2 && column[0] == '{' && column[len(column)-1] == '}'
}

// scanOperators checks every operator of a tier against the progressively
// stripped value. Each match removes its first occurrence; the last match
// wins.
func scanOperators(token string, tier []queryir.Operator) (queryir.Operator, string, bool) {
	var (
		found queryir.Operator
		ok    bool
	)
	value := token
	for _, op := range tier {
		if strings.Contains(value, string(op)) {
			found, ok = op, true
			value = strings.Replace(value, string(op), "", 1)
		}
	}
	return found, value, ok
}
