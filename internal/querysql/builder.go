package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/apply"
	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/queryir"
)

var (
	ErrUnknownResource  = errors.New("unknown resource")
	ErrUnknownRelation  = errors.New("unknown relation")
	ErrInvalidColumn    = errors.New("invalid column")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrMisplacedClause  = errors.New("clause not allowed in a condition group")
	ErrPlaceholderCount = errors.New("placeholder count mismatch")
)

var operators = map[string]struct{}{
	apply.OpEquals:                 {},
	apply.OpLike:                   {},
	string(queryir.OpLess):         {},
	string(queryir.OpGreater):      {},
	string(queryir.OpLessEqual):    {},
	string(queryir.OpGreaterEqual): {},
	string(queryir.OpNotEqual):     {},
}

// binder numbers placeholders in the order values are bound.
type binder struct {
	dialect Dialect
	args    []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

type condition struct {
	or  bool
	sql string
}

// Builder renders apply.Builder calls into parameterized SQL.
//
// CRITICAL: values are always bound, never interpolated. Column names are
// checked against a plain identifier pattern; only Raw expressions are
// written verbatim, and always inside parentheses.
type Builder struct {
	dialect  Dialect
	catalog  *catalog.Catalog
	resource *catalog.Resource
	binder   *binder
	nested   bool
	conds    []condition
	order    []string
	page     *queryir.Pagination
	eager    []Eager

	// err is shared with nested builders; the first error wins.
	err *error
}

var _ apply.Builder = (*Builder)(nil)

// NewBuilder returns a builder for a root query over resource. With a nil
// catalog the resource name is used as its table with key "id", and
// relations are unavailable.
func NewBuilder(d Dialect, cat *catalog.Catalog, resource string) (*Builder, error) {
	res, ok := cat.Lookup(resource)
	if !ok {
		if cat != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
		}
		if !catalog.IsIdentifier(resource) {
			return nil, fmt.Errorf("%w: resource %q", ErrInvalidColumn, resource)
		}
		res = &catalog.Resource{Name: resource, Table: resource, Key: catalog.DefaultKey}
	}

	var err error
	return &Builder{
		dialect:  d,
		catalog:  cat,
		resource: res,
		binder:   &binder{dialect: d},
		err:      &err,
	}, nil
}

// Compile applies spec to a new builder and returns the plan.
func Compile(d Dialect, cat *catalog.Catalog, resource string, spec *queryir.Specification) (*Plan, error) {
	b, err := NewBuilder(d, cat, resource)
	if err != nil {
		return nil, err
	}
	if err := apply.Apply(spec, b); err != nil {
		return nil, err
	}
	return b.Build()
}

func (b *Builder) fail(err error) {
	if *b.err == nil {
		*b.err = err
	}
}

// child returns a condition builder sharing b's placeholder numbering.
func (b *Builder) child(res *catalog.Resource) *Builder {
	return &Builder{
		dialect:  b.dialect,
		catalog:  b.catalog,
		resource: res,
		binder:   b.binder,
		nested:   true,
		err:      b.err,
	}
}

func (b *Builder) add(or bool, sql string) {
	b.conds = append(b.conds, condition{or: or, sql: sql})
}

// where joins conditions left to right with their connectives.
func (b *Builder) where() string {
	var sb strings.Builder
	for i, c := range b.conds {
		if i > 0 {
			if c.or {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		sb.WriteString(c.sql)
	}
	return sb.String()
}

// enclosed returns the conditions as one operand: parenthesized when there
// is more than one.
func (b *Builder) enclosed() string {
	if len(b.conds) > 1 {
		return "(" + b.where() + ")"
	}
	return b.where()
}

func (b *Builder) AndGroup(fn func(apply.Builder)) { b.group(false, fn) }
func (b *Builder) OrGroup(fn func(apply.Builder))  { b.group(true, fn) }

// group renders fn into a nested condition. Empty groups are dropped.
func (b *Builder) group(or bool, fn func(apply.Builder)) {
	g := b.child(b.resource)
	fn(g)
	if len(g.conds) == 0 {
		return
	}
	b.add(or, g.enclosed())
}

func (b *Builder) Compare(column, op, value string) {
	if !queryir.IsColumn(column) {
		b.fail(fmt.Errorf("%w: %q", ErrInvalidColumn, column))
		return
	}
	if _, ok := operators[op]; !ok {
		b.fail(fmt.Errorf("%w: %q", ErrInvalidOperator, op))
		return
	}
	b.add(false, fmt.Sprintf("%s %s %s", column, op, b.binder.bind(value)))
}

// Raw writes expr verbatim, parenthesized so it stays one operand of the
// surrounding connectives. The last len(args) "?" marks in expr are bind
// placeholders; earlier marks are left as written.
func (b *Builder) Raw(expr string, args ...string) {
	marks := strings.Count(expr, "?")
	if marks < len(args) {
		b.fail(fmt.Errorf("%w: %q has %d placeholders for %d args", ErrPlaceholderCount, expr, marks, len(args)))
		return
	}

	var sb strings.Builder
	skip := marks - len(args)
	next := 0
	for _, r := range expr {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}
		if skip > 0 {
			skip--
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(b.binder.bind(args[next]))
		next++
	}
	b.add(false, "("+sb.String()+")")
}

func (b *Builder) Overlaps(column string, values []string) {
	if !queryir.IsColumn(column) {
		b.fail(fmt.Errorf("%w: %q", ErrInvalidColumn, column))
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.binder.bind(v)
	}
	b.add(false, b.dialect.overlaps(column, placeholders))
}

func (b *Builder) relation(name string) (catalog.Relation, *catalog.Resource, bool) {
	rel, ok := b.resource.Relation(name)
	if !ok {
		b.fail(fmt.Errorf("%w: %s.%s", ErrUnknownRelation, b.resource.Name, name))
		return rel, nil, false
	}
	related, ok := b.catalog.Lookup(rel.Table)
	if !ok {
		related = &catalog.Resource{Name: rel.Name, Table: rel.Table, Key: rel.Key}
	}
	return rel, related, true
}

func (b *Builder) EagerLoad(name string, constrain func(apply.Builder)) {
	if b.nested {
		b.fail(fmt.Errorf("%w: eager load %q", ErrMisplacedClause, name))
		return
	}
	rel, related, ok := b.relation(name)
	if !ok {
		return
	}

	// Eager statements run separately and number their own placeholders.
	eb := &Builder{
		dialect:  b.dialect,
		catalog:  b.catalog,
		resource: related,
		binder:   &binder{dialect: b.dialect},
		nested:   true,
		err:      b.err,
	}
	if constrain != nil {
		constrain(eb)
	}

	b.eager = append(b.eager, Eager{
		Name:     name,
		Relation: rel,
		dialect:  b.dialect,
		where:    eb.enclosed(),
		args:     eb.binder.args,
	})
}

func (b *Builder) WhereHas(name string, constrain func(apply.Builder)) {
	rel, related, ok := b.relation(name)
	if !ok {
		return
	}

	g := b.child(related)
	if constrain != nil {
		constrain(g)
	}

	parentColumn, relatedColumn := rel.Link()

	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM ")
	sb.WriteString(rel.Table)
	if rel.Kind == catalog.ManyToMany {
		fmt.Fprintf(&sb, " INNER JOIN %s ON %s.%s = %s.%s", rel.Pivot, rel.Pivot, rel.PivotForeign, rel.Table, rel.Key)
	}
	fmt.Fprintf(&sb, " WHERE %s = %s.%s", relatedColumn, b.resource.Table, parentColumn)
	if len(g.conds) > 0 {
		sb.WriteString(" AND ")
		sb.WriteString(g.enclosed())
	}
	sb.WriteString(")")
	b.add(false, sb.String())
}

func (b *Builder) OrderBy(column string, dir queryir.Direction) {
	if b.nested {
		b.fail(fmt.Errorf("%w: order by %q", ErrMisplacedClause, column))
		return
	}
	if !queryir.IsColumn(column) {
		b.fail(fmt.Errorf("%w: order column %q", ErrInvalidColumn, column))
		return
	}
	b.order = append(b.order, column+" "+strings.ToUpper(string(dir)))
}

func (b *Builder) Paginate(page, limit int) {
	if b.nested {
		b.fail(fmt.Errorf("%w: paginate", ErrMisplacedClause))
		return
	}
	b.page = &queryir.Pagination{Page: page, Limit: limit}
}

func (b *Builder) FetchAll() {
	if b.nested {
		b.fail(fmt.Errorf("%w: fetch all", ErrMisplacedClause))
		return
	}
	b.page = nil
}
