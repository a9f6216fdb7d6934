package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/queryir"
)

// ParentKeyColumn is the alias under which eager statements return the
// parent key each related row belongs to.
const ParentKeyColumn = "sieve_parent"

// Statement is parameterized SQL with its bound values.
type Statement struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// Plan is the SQL rendering of one specification.
type Plan struct {
	Resource *catalog.Resource `json:"resource"`

	// Root selects the parent rows.
	Root Statement `json:"root"`

	// Count counts the rows matched by Root without pagination.
	Count Statement `json:"count"`

	// Page is nil when every row is fetched.
	Page *queryir.Pagination `json:"page,omitempty"`

	Eager []Eager `json:"eager,omitempty"`
}

// Build renders the collected clauses. It returns the first error recorded
// by any builder call.
func (b *Builder) Build() (*Plan, error) {
	if *b.err != nil {
		return nil, *b.err
	}
	if b.nested {
		return nil, fmt.Errorf("%w: build", ErrMisplacedClause)
	}

	table := b.resource.Table
	where := ""
	if len(b.conds) > 0 {
		where = " WHERE " + b.where()
	}

	// MANDATORY: every root query ends its ORDER BY with the primary key so
	// pages are stable.
	order := append([]string{}, b.order...)
	if !b.orderedByKey() {
		order = append(order, table+"."+b.resource.Key+" ASC")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * FROM %s%s ORDER BY %s", table, where, strings.Join(order, ", "))
	if b.page != nil {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", b.page.Limit, b.page.Offset())
	}

	return &Plan{
		Resource: b.resource,
		Root:     Statement{SQL: sb.String(), Args: b.binder.args},
		Count:    Statement{SQL: "SELECT COUNT(*) FROM " + table + where, Args: b.binder.args},
		Page:     b.page,
		Eager:    b.eager,
	}, nil
}

func (b *Builder) orderedByKey() bool {
	qualified := b.resource.Table + "." + b.resource.Key
	for _, o := range b.order {
		column := strings.Fields(o)[0]
		if column == b.resource.Key || column == qualified {
			return true
		}
	}
	return false
}

// Eager is a deferred related-rows query. It is rendered once the parent
// keys are known.
type Eager struct {
	Name     string           `json:"name"`
	Relation catalog.Relation `json:"relation"`

	dialect Dialect
	where   string
	args    []any
}

// ParentColumn is the parent row column whose values select related rows.
func (e Eager) ParentColumn() string {
	parent, _ := e.Relation.Link()
	return parent
}

// Statement renders the eager query for the given parent key values.
// Constraint values are bound before the keys.
func (e Eager) Statement(keys []any) Statement {
	rel := e.Relation
	_, match := rel.Link()

	args := append([]any{}, e.args...)
	var in string
	if len(keys) == 0 {
		in = "1 = 0"
	} else {
		placeholders := make([]string, len(keys))
		for i, k := range keys {
			args = append(args, k)
			placeholders[i] = e.dialect.Placeholder(len(args))
		}
		in = fmt.Sprintf("%s IN (%s)", match, strings.Join(placeholders, ", "))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s.*, %s AS %s FROM %s", rel.Table, match, ParentKeyColumn, rel.Table)
	if rel.Kind == catalog.ManyToMany {
		fmt.Fprintf(&sb, " INNER JOIN %s ON %s.%s = %s.%s", rel.Pivot, rel.Pivot, rel.PivotForeign, rel.Table, rel.Key)
	}
	sb.WriteString(" WHERE ")
	if e.where != "" {
		sb.WriteString(e.where)
		sb.WriteString(" AND ")
	}
	sb.WriteString(in)
	sb.WriteString(" ORDER BY " + rel.Table + "." + rel.Key + " ASC")

	return Statement{SQL: sb.String(), Args: args}
}

// Describe renders a plan as text, one statement per line, with eager
// statements shown for placeholder parent keys.
func (p *Plan) Describe() string {
	var sb strings.Builder
	writeStatement(&sb, "root", p.Root)
	writeStatement(&sb, "count", p.Count)
	for _, e := range p.Eager {
		writeStatement(&sb, "eager "+e.Name, e.Statement([]any{":" + e.ParentColumn()}))
	}
	return sb.String()
}

func writeStatement(sb *strings.Builder, label string, s Statement) {
	fmt.Fprintf(sb, "%s: %s\n", label, s.SQL)
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = strconv.Quote(fmt.Sprint(a))
	}
	fmt.Fprintf(sb, "args: [%s]\n", strings.Join(args, ", "))
}
