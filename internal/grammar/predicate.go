package grammar

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// CompileFilter compiles one generic `key=value` pair.
//
// A leading "|" on key makes the group OR-combined; it is removed from the
// column name. The value is split on "," and each token is parsed with
// ParseOperand. An empty value yields a single Equals with an empty operand.
func CompileFilter(key, raw string) queryir.ColumnFilter {
	column := key
	combinator := queryir.CombineAnd
	if strings.HasPrefix(column, "|") {
		column = column[1:]
		combinator = queryir.CombineOr
	}

	tokens := strings.Split(raw, ",")
	children := make([]queryir.Predicate, 0, len(tokens))
	for _, token := range tokens {
		children = append(children, ParseOperand(column, token))
	}

	return queryir.ColumnFilter{
		Column: column,
		Group:  queryir.Group{Children: children, Combinator: combinator},
	}
}
