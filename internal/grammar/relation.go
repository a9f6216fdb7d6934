package grammar

import (
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// CompileRelations compiles a relation expression.
//
//	posts@comments^*body=%spam%;author=admin
//
// Segments are separated by "@". A segment without "^" is a bare eager
// load. Otherwise the first "^" separates the relation name from ";"
// separated clauses, each split on its first "=". A clause whose column
// starts with "*" constrains the eager load; any other clause constrains
// parent rows by existence. Clauses keep their order and their own mode.
func CompileRelations(spec string) ([]queryir.RelationNode, error) {
	var nodes []queryir.RelationNode
	for _, segment := range strings.Split(spec, "@") {
		if segment == "" {
			continue
		}

		name, nested, ok := strings.Cut(segment, "^")
		if !ok {
			nodes = append(nodes, queryir.RelationNode{Name: segment})
			continue
		}

		clauses, err := compileClauses(name, nested)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, queryir.RelationNode{Name: name, Clauses: clauses})
	}
	return nodes, nil
}

func compileClauses(relation, nested string) ([]queryir.RelationClause, error) {
	parts := strings.Split(nested, ";")
	clauses := make([]queryir.RelationClause, 0, len(parts))
	for _, part := range parts {
		column, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, malformed(KeyRelations, "relation %q clause %q is missing '='", relation, part)
		}

		mode := queryir.ExistenceConstrain
		if strings.HasPrefix(column, "*") {
			column = column[1:]
			mode = queryir.EagerConstrain
		}

		clauses = append(clauses, queryir.RelationClause{
			Mode:   mode,
			Filter: CompileFilter(column, value),
		})
	}
	return clauses, nil
}
