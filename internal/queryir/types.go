package queryir

// Params is the raw query parameter set a specification is compiled from.
// Keys are unique; values are taken verbatim (already URL-decoded).
type Params map[string]string

// Predicate represents a single filter condition or a boolean combination
// of conditions.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern enables exhaustive type switches in adapters.
//
// Predicate types:
//   - Equals: column = value
//   - Compare: column <op> value
//   - Like: column LIKE pattern
//   - Between: lo < column < hi
//   - RawJSONEquals: <caller expression> = value
//   - Group: ordered children joined by AND or OR
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Combinator joins the children of a Group.
type Combinator string

const (
	CombineAnd Combinator = "AND"
	CombineOr  Combinator = "OR"
)

// Operator is a comparison operator carried by Compare.
type Operator string

const (
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpNotEqual     Operator = "!="
)

// Equals represents a column-equals-literal predicate.
//
// Semantics:
//
//	<column> = <value>
//
// When Or is set the predicate joins its preceding sibling with OR instead
// of the enclosing group's combinator.
type Equals struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Or     bool   `json:"or,omitempty"`
}

func (Equals) predicateNode() {}

// Compare represents an ordered or negated comparison.
//
// Semantics:
//
//	<column> <op> <value>
type Compare struct {
	Column string   `json:"column"`
	Op     Operator `json:"op"`
	Value  string   `json:"value"`
}

func (Compare) predicateNode() {}

// Like represents a pattern match. The pattern is passed through unchanged,
// including its % wildcards.
type Like struct {
	Column  string `json:"column"`
	Pattern string `json:"pattern"`
}

func (Like) predicateNode() {}

// Between represents an open range.
//
// Semantics:
//
//	<column> > <lo> AND <column> < <hi>
//
// Bounds are kept as strings; the executor decides how they compare.
// Empty bounds are legal and are left for the executor to reject.
// When Or is set the range joins its preceding sibling with OR.
type Between struct {
	Column string `json:"column"`
	Lo     string `json:"lo"`
	Hi     string `json:"hi"`
	Or     bool   `json:"or,omitempty"`
}

func (Between) predicateNode() {}

// RawJSONEquals compares a caller-supplied column expression to a bound
// value. Expr is used verbatim as the left-hand side.
//
// Semantics:
//
//	<expr> = <value>
type RawJSONEquals struct {
	Expr  string `json:"expr"`
	Value string `json:"value"`
}

func (RawJSONEquals) predicateNode() {}

// Group is an ordered boolean combination of predicates.
//
// Children are joined left to right by Combinator, except that a child
// marked Or (Equals, Between) always joins with OR. A Group owns its
// children; an empty Group is always true.
type Group struct {
	Children   []Predicate `json:"children"`
	Combinator Combinator  `json:"combinator"`
}

func (Group) predicateNode() {}

// ColumnFilter is the compiled form of one generic filter parameter.
// Its Group combinator is OR when the key carried a leading pipe.
type ColumnFilter struct {
	Column string `json:"column"`
	Group  Group  `json:"group"`
}

// Mode tells an executor how a relation clause constrains a query.
type Mode string

const (
	// EagerConstrain restricts the related rows loaded into the relation.
	EagerConstrain Mode = "eager"

	// ExistenceConstrain restricts parent rows to those with at least one
	// matching related row.
	ExistenceConstrain Mode = "exists"
)

// RelationClause is one `column=value` clause inside a relation expression.
type RelationClause struct {
	Mode   Mode         `json:"mode"`
	Filter ColumnFilter `json:"filter"`
}

// RelationNode is one `@`-separated relation segment. A node without
// clauses is a plain eager-load request.
type RelationNode struct {
	Name    string           `json:"name"`
	Clauses []RelationClause `json:"clauses,omitempty"`
}

// Constraints returns the clause filters of the given mode, in order.
func (n RelationNode) Constraints(mode Mode) []ColumnFilter {
	var out []ColumnFilter
	for _, c := range n.Clauses {
		if c.Mode == mode {
			out = append(out, c.Filter)
		}
	}
	return out
}

// Comparator is the comparison used by a JSON path predicate.
type Comparator string

const (
	CompareEquals Comparator = "="
	CompareLike   Comparator = "like"
)

// JSONPathPredicate compares a value nested inside a JSON column.
// Path holds at least one segment; the first segment is the column.
type JSONPathPredicate struct {
	Path       []string   `json:"path"`
	Comparator Comparator `json:"comparator"`
	Value      string     `json:"value"`
}

// ArrayContains is true when the stored array and Values overlap.
type ArrayContains struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderSpec sorts by Columns in order, all sharing one Direction.
type OrderSpec struct {
	Columns   []string  `json:"columns"`
	Direction Direction `json:"direction"`
}

// DefaultLimit is the page size used when a page is requested without a
// limit.
const DefaultLimit = 25

// Pagination selects one page of results. Page is 1-based.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows skipped before this page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Specification is the assembled, immutable description of one request's
// filter intent.
//
// A nil Pagination means "fetch all". A nil Locale or Order means the
// corresponding directive was absent.
type Specification struct {
	Filters      []ColumnFilter      `json:"filters,omitempty"`
	Relations    []RelationNode      `json:"relations,omitempty"`
	JSONFilters  []JSONPathPredicate `json:"json_filters,omitempty"`
	ArrayFilters []ArrayContains     `json:"array_filters,omitempty"`
	Locale       *string             `json:"locale,omitempty"`
	Order        *OrderSpec          `json:"order,omitempty"`
	Pagination   *Pagination         `json:"pagination,omitempty"`
}

// FetchAll reports whether the specification asks for every matching row.
func (s *Specification) FetchAll() bool {
	return s.Pagination == nil
}
