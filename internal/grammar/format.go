package grammar

import (
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// FormatFilter renders a compiled filter back to its `key=value` form.
// Compiling the result with CompileFilter yields an equal filter whenever
// the operands themselves contain no grammar punctuation.
func FormatFilter(f queryir.ColumnFilter) (key, value string) {
	key = f.Column
	if f.Group.Combinator == queryir.CombineOr {
		key = "|" + key
	}

	tokens := make([]string, len(f.Group.Children))
	for i, child := range f.Group.Children {
		tokens[i] = formatOperand(child)
	}
	return key, strings.Join(tokens, ",")
}

func formatOperand(p queryir.Predicate) string {
	switch pred := p.(type) {
	case queryir.Equals:
		if pred.Or {
			return "|" + pred.Value
		}
		return pred.Value
	case queryir.Compare:
		return string(pred.Op) + pred.Value
	case queryir.Like:
		return pred.Pattern
	case queryir.Between:
		s := pred.Lo + "<>" + pred.Hi
		if pred.Or {
			return "|" + s
		}
		return s
	case queryir.RawJSONEquals:
		return pred.Value
	default:
		// Nested groups have no token form.
		return ""
	}
}

// FormatRelations renders relation nodes back to a relation expression.
func FormatRelations(nodes []queryir.RelationNode) string {
	segments := make([]string, len(nodes))
	for i, node := range nodes {
		if len(node.Clauses) == 0 {
			segments[i] = node.Name
			continue
		}
		clauses := make([]string, len(node.Clauses))
		for j, c := range node.Clauses {
			key, value := FormatFilter(c.Filter)
			if c.Mode == queryir.EagerConstrain {
				key = "*" + key
			}
			clauses[j] = key + "=" + value
		}
		segments[i] = node.Name + "^" + strings.Join(clauses, ";")
	}
	return strings.Join(segments, "@")
}

// Format renders a specification back to query parameters. Only the first
// JSON filter is representable.
func Format(spec *queryir.Specification) queryir.Params {
	params := queryir.Params{}

	for _, f := range spec.Filters {
		key, value := FormatFilter(f)
		params[key] = value
	}

	if len(spec.Relations) > 0 {
		params[KeyRelations] = FormatRelations(spec.Relations)
	}

	if len(spec.JSONFilters) > 0 {
		j := spec.JSONFilters[0]
		params[KeyJSON] = strings.Join(j.Path, ".") + ":" + j.Value
	}

	if len(spec.ArrayFilters) > 0 {
		segments := make([]string, len(spec.ArrayFilters))
		for i, a := range spec.ArrayFilters {
			segments[i] = a.Column + ":" + strings.Join(a.Values, ",")
		}
		params[KeyArray] = strings.Join(segments, ";")
	}

	if spec.Locale != nil {
		params[KeyLocale] = *spec.Locale
	}

	if spec.Order != nil {
		params[KeyOrderBy] = strings.Join(spec.Order.Columns, ",")
		params[KeyDirection] = string(spec.Order.Direction)
	}

	if spec.Pagination != nil {
		params[KeyPage] = strconv.Itoa(spec.Pagination.Page)
		params[KeyLimit] = strconv.Itoa(spec.Pagination.Limit)
	}

	return params
}
