package queryir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_CleanSpecification(t *testing.T) {
	result := Inspect(sampleSpec())

	assert.True(t, result.Clean)
	assert.Empty(t, result.Warnings)
}

func TestInspect_EmptyOperand(t *testing.T) {
	spec := &Specification{Filters: []ColumnFilter{{
		Column: "name",
		Group:  Group{Combinator: CombineAnd, Children: []Predicate{Equals{Column: "name", Value: ""}}},
	}}}

	result := Inspect(spec)

	assert.False(t, result.Clean)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "column 'name' compared to empty operand", result.Warnings[0])
}

func TestInspect_EmptyRangeBound(t *testing.T) {
	spec := &Specification{Filters: []ColumnFilter{{
		Column: "price",
		Group:  Group{Combinator: CombineAnd, Children: []Predicate{Between{Column: "price", Lo: "10"}}},
	}}}

	result := Inspect(spec)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, `column 'price' range has empty bound ("10", "")`, result.Warnings[0])
}

func TestInspect_RelationClauses(t *testing.T) {
	spec := &Specification{Relations: []RelationNode{{
		Name: "comments",
		Clauses: []RelationClause{{
			Mode: ExistenceConstrain,
			Filter: ColumnFilter{Column: "author", Group: Group{
				Combinator: CombineAnd,
				Children:   []Predicate{Compare{Column: "author", Op: OpNotEqual}},
			}},
		}},
	}}}

	result := Inspect(spec)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "column 'author' compared (!=) to empty operand", result.Warnings[0])
}

func TestInspect_PathsAndArrays(t *testing.T) {
	empty := ""
	spec := &Specification{
		JSONFilters:  []JSONPathPredicate{{Path: []string{"meta", ""}, Comparator: CompareEquals, Value: "x"}},
		ArrayFilters: []ArrayContains{{Column: "roles", Values: []string{"admin", ""}}},
		Locale:       &empty,
	}

	result := Inspect(spec)

	assert.Len(t, result.Warnings, 3)
}

func TestInspect_EmptyGroup(t *testing.T) {
	spec := &Specification{Filters: []ColumnFilter{{Column: "x", Group: Group{Combinator: CombineOr}}}}

	result := Inspect(spec)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "empty OR group", result.Warnings[0])
}

func TestInspect_WarningsAreLowercase(t *testing.T) {
	spec := &Specification{Filters: []ColumnFilter{{
		Column: "views",
		Group: Group{Combinator: CombineAnd, Children: []Predicate{
			Equals{Column: "views"},
			Compare{Column: "views", Op: OpGreater},
			Between{Column: "views"},
			nil,
		}},
	}}}

	result := Inspect(spec)

	require.Len(t, result.Warnings, 4)
	for _, w := range result.Warnings {
		assert.Equal(t, strings.ToLower(w[:1]), w[:1], w)
	}
	assert.Equal(t, "unknown predicate type: <nil>", result.Warnings[3])
}

func TestInspect_NilSpecification(t *testing.T) {
	result := Inspect(nil)
	assert.False(t, result.Clean)
}

func TestRawExpressions(t *testing.T) {
	spec := &Specification{
		Filters: []ColumnFilter{
			{Column: "status", Group: Group{Combinator: CombineAnd, Children: []Predicate{Equals{Column: "status", Value: "x"}}}},
			{Column: "{meta->>'a'}", Group: Group{Combinator: CombineAnd, Children: []Predicate{
				Group{Combinator: CombineOr, Children: []Predicate{RawJSONEquals{Expr: "meta->>'a'", Value: "1"}}},
			}}},
		},
		Relations: []RelationNode{{
			Name: "comments",
			Clauses: []RelationClause{{
				Mode: ExistenceConstrain,
				Filter: ColumnFilter{Column: "{body}", Group: Group{
					Combinator: CombineAnd,
					Children:   []Predicate{RawJSONEquals{Expr: "body", Value: "x"}},
				}},
			}},
		}},
	}

	assert.Equal(t, []string{"meta->>'a'", "body"}, RawExpressions(spec))
	assert.Empty(t, RawExpressions(sampleSpec()))
	assert.Nil(t, RawExpressions(nil))
}
