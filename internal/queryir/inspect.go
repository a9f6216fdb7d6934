package queryir

import "fmt"

// InspectionResult lists permissive inputs found in a specification.
//
// The grammar never rejects empty operands; they compile into predicates
// with empty strings and the executor decides whether they are valid.
// Inspect surfaces them so callers can log or reject them by policy.
type InspectionResult struct {
	// Clean is true when no warnings were found.
	Clean bool

	// Warnings lists every permissive operand, in specification order.
	Warnings []string
}

// Inspect walks a specification and reports empty operands, empty range
// bounds, empty groups and empty path segments.
//
// Inspect is a pure function with no side effects.
func Inspect(spec *Specification) InspectionResult {
	in := &inspector{
		warnings: []string{},
	}
	if spec == nil {
		in.addWarning("nil specification")
	} else {
		in.inspectSpecification(spec)
	}

	return InspectionResult{
		Clean:    len(in.warnings) == 0,
		Warnings: in.warnings,
	}
}

// inspector accumulates warnings during traversal.
type inspector struct {
	warnings []string
}

func (in *inspector) addWarning(format string, args ...any) {
	in.warnings = append(in.warnings, fmt.Sprintf(format, args...))
}

func (in *inspector) inspectSpecification(spec *Specification) {
	for _, f := range spec.Filters {
		in.inspectPredicate(f.Group)
	}

	for _, rel := range spec.Relations {
		if rel.Name == "" {
			in.addWarning("relation with empty name")
		}
		for _, c := range rel.Clauses {
			in.inspectPredicate(c.Filter.Group)
		}
	}

	for _, j := range spec.JSONFilters {
		for i, segment := range j.Path {
			if segment == "" {
				in.addWarning("JSON path %v has empty segment at %d", j.Path, i)
			}
		}
		if j.Value == "" {
			in.addWarning("JSON path %v compared to empty value", j.Path)
		}
	}

	for _, a := range spec.ArrayFilters {
		for _, v := range a.Values {
			if v == "" {
				in.addWarning("array column '%s' has empty element", a.Column)
				break
			}
		}
	}

	if spec.Locale != nil && *spec.Locale == "" {
		in.addWarning("empty locale")
	}
}

// inspectPredicate recursively inspects a predicate node.
func (in *inspector) inspectPredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		if pred.Value == "" {
			in.addWarning("column '%s' compared to empty operand", pred.Column)
		}
	case Compare:
		if pred.Value == "" {
			in.addWarning("column '%s' compared (%s) to empty operand", pred.Column, pred.Op)
		}
	case Like:
		// any pattern is acceptable, including an empty one
	case Between:
		if pred.Lo == "" || pred.Hi == "" {
			in.addWarning("column '%s' range has empty bound (%q, %q)", pred.Column, pred.Lo, pred.Hi)
		}
	case RawJSONEquals:
		if pred.Expr == "" {
			in.addWarning("raw JSON predicate with empty expression")
		}
	case Group:
		if len(pred.Children) == 0 {
			in.addWarning("empty %s group", pred.Combinator)
		}
		for _, child := range pred.Children {
			in.inspectPredicate(child)
		}
	default:
		in.addWarning("unknown predicate type: %T", p)
	}
}

// RawExpressions lists the caller-written {expr} expressions in spec, from
// column filters and relation clauses, in specification order.
func RawExpressions(spec *Specification) []string {
	if spec == nil {
		return nil
	}

	var out []string
	var walk func(p Predicate)
	walk = func(p Predicate) {
		switch pred := p.(type) {
		case RawJSONEquals:
			out = append(out, pred.Expr)
		case Group:
			for _, child := range pred.Children {
				walk(child)
			}
		}
	}

	for _, f := range spec.Filters {
		walk(f.Group)
	}
	for _, rel := range spec.Relations {
		for _, c := range rel.Clauses {
			walk(c.Filter.Group)
		}
	}
	return out
}
