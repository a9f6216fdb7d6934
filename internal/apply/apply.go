// Package apply walks a compiled queryir.Specification and drives a query
// builder.
//
// Compilation and execution are separate phases: the grammar produces an
// immutable Specification, and Apply replays it against any Builder. A
// Builder never sees a partially compiled request.
package apply

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/queryir"
)

// ErrInvalidPath reports a JSON path whose column is not a plain identifier.
var ErrInvalidPath = errors.New("invalid json path column")

// Comparison operators passed to Builder.Compare, in addition to the
// queryir.Operator values.
const (
	OpEquals = "="
	OpLike   = "LIKE"
)

// Builder is the executor contract.
//
// Conditions added to a builder are joined to the preceding condition of
// the same group. Compare, Raw, Overlaps and AndGroup join with AND; OrGroup
// joins with OR. The first condition of a group has no connective.
type Builder interface {
	// AndGroup adds a nested condition group joined with AND.
	AndGroup(fn func(Builder))

	// OrGroup adds a nested condition group joined with OR.
	OrGroup(fn func(Builder))

	// Compare adds `column op ?` with value bound.
	Compare(column, op, value string)

	// Raw adds a caller-built expression. Each "?" in expr binds one arg.
	Raw(expr string, args ...string)

	// Overlaps adds an array overlap test between column and values.
	Overlaps(column string, values []string)

	// EagerLoad requests related rows. constrain is nil for an
	// unconstrained load.
	EagerLoad(relation string, constrain func(Builder))

	// WhereHas restricts parent rows to those with a related row matching
	// constrain.
	WhereHas(relation string, constrain func(Builder))

	OrderBy(column string, dir queryir.Direction)
	Paginate(page, limit int)
	FetchAll()
}

// Apply drives b with spec, in directive order: arrays, locale, relations,
// JSON paths, ordering, column filters, then pagination or fetch-all.
// Every JSON path column is checked before b sees its first call.
func Apply(spec *queryir.Specification, b Builder) error {
	if spec == nil {
		return fmt.Errorf("cannot apply nil specification")
	}
	for _, j := range spec.JSONFilters {
		if len(j.Path) == 0 || !queryir.IsColumn(j.Path[0]) {
			return fmt.Errorf("%w: %q", ErrInvalidPath, strings.Join(j.Path, "."))
		}
	}

	for _, a := range spec.ArrayFilters {
		b.Overlaps(a.Column, a.Values)
	}

	if spec.Locale != nil {
		b.Raw(queryir.LocaleExpr(*spec.Locale))
	}

	for _, rel := range spec.Relations {
		applyRelation(b, rel)
	}

	for _, j := range spec.JSONFilters {
		op := OpEquals
		if j.Comparator == queryir.CompareLike {
			op = OpLike
		}
		b.Raw(j.Expr()+" "+op+" ?", j.Value)
	}

	if spec.Order != nil {
		for _, column := range spec.Order.Columns {
			b.OrderBy(column, spec.Order.Direction)
		}
	}

	for _, f := range spec.Filters {
		ApplyFilter(b, f)
	}

	if spec.Pagination != nil {
		b.Paginate(spec.Pagination.Page, spec.Pagination.Limit)
	} else {
		b.FetchAll()
	}
	return nil
}

// ApplyFilter adds one column filter as an AND-joined group.
func ApplyFilter(b Builder, f queryir.ColumnFilter) {
	group := f.Group
	b.AndGroup(func(g Builder) {
		applyChildren(g, group)
	})
}

// applyRelation emits one EagerLoad for a bare node or for the node's
// eager clauses combined, and one WhereHas per existence clause.
func applyRelation(b Builder, rel queryir.RelationNode) {
	if len(rel.Clauses) == 0 {
		b.EagerLoad(rel.Name, nil)
		return
	}

	if eager := rel.Constraints(queryir.EagerConstrain); len(eager) > 0 {
		b.EagerLoad(rel.Name, func(g Builder) {
			for _, f := range eager {
				ApplyFilter(g, f)
			}
		})
	}

	for _, f := range rel.Constraints(queryir.ExistenceConstrain) {
		filter := f
		b.WhereHas(rel.Name, func(g Builder) {
			ApplyFilter(g, filter)
		})
	}
}

// applyChildren joins the children of group left to right. A child marked
// Or joins with OR regardless of the group combinator.
func applyChildren(b Builder, group queryir.Group) {
	for i, child := range group.Children {
		or := i > 0 && (group.Combinator == queryir.CombineOr || orMarked(child))
		applyPredicate(b, child, or)
	}
}

func orMarked(p queryir.Predicate) bool {
	switch pred := p.(type) {
	case queryir.Equals:
		return pred.Or
	case queryir.Between:
		return pred.Or
	}
	return false
}

func applyPredicate(b Builder, p queryir.Predicate, or bool) {
	switch pred := p.(type) {
	case queryir.Equals:
		leaf(b, or, func(g Builder) { g.Compare(pred.Column, OpEquals, pred.Value) })
	case queryir.Compare:
		leaf(b, or, func(g Builder) { g.Compare(pred.Column, string(pred.Op), pred.Value) })
	case queryir.Like:
		leaf(b, or, func(g Builder) { g.Compare(pred.Column, OpLike, pred.Pattern) })
	case queryir.RawJSONEquals:
		leaf(b, or, func(g Builder) { g.Raw(pred.Expr+" = ?", pred.Value) })
	case queryir.Between:
		group(b, or, func(g Builder) {
			g.Compare(pred.Column, string(queryir.OpGreater), pred.Lo)
			g.Compare(pred.Column, string(queryir.OpLess), pred.Hi)
		})
	case queryir.Group:
		group(b, or, func(g Builder) { applyChildren(g, pred) })
	}
}

// leaf adds a single condition. An OR-joined leaf is wrapped in a one-item
// OrGroup since plain conditions always join with AND.
func leaf(b Builder, or bool, add func(Builder)) {
	if or {
		b.OrGroup(add)
		return
	}
	add(b)
}

func group(b Builder, or bool, fn func(Builder)) {
	if or {
		b.OrGroup(fn)
		return
	}
	b.AndGroup(fn)
}
