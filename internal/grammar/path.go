package grammar

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// CompileJSON compiles a `col.key...:value` JSON path filter. The value is
// split on its first ":"; a missing ":" is a MalformedGrammar error, and so
// is a column that is not a plain identifier. Keys after the column are
// quoted when rendered and may hold any text.
func CompileJSON(spec string) (queryir.JSONPathPredicate, error) {
	path, value, ok := strings.Cut(spec, ":")
	if !ok {
		return queryir.JSONPathPredicate{}, malformed(KeyJSON, "json filter %q is missing ':'", spec)
	}

	segments := strings.Split(path, ".")
	if !queryir.IsColumn(segments[0]) {
		return queryir.JSONPathPredicate{}, malformed(KeyJSON, "json filter column %q is not an identifier", segments[0])
	}

	comparator := queryir.CompareEquals
	if strings.Contains(value, "%") {
		comparator = queryir.CompareLike
	}

	return queryir.JSONPathPredicate{
		Path:       segments,
		Comparator: comparator,
		Value:      value,
	}, nil
}

// CompileArray compiles `col:v1,v2;col2:v3` into one overlap predicate per
// ";" segment. Empty segments are skipped.
func CompileArray(spec string) ([]queryir.ArrayContains, error) {
	var out []queryir.ArrayContains
	for _, segment := range strings.Split(spec, ";") {
		if segment == "" {
			continue
		}
		column, values, ok := strings.Cut(segment, ":")
		if !ok {
			return nil, malformed(KeyArray, "array filter %q is missing ':'", segment)
		}
		out = append(out, queryir.ArrayContains{
			Column: column,
			Values: strings.Split(values, ","),
		})
	}
	return out, nil
}
