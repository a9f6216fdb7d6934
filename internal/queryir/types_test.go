package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicate_SealedSwitch(t *testing.T) {
	preds := []Predicate{
		Equals{Column: "age", Value: "18"},
		Compare{Column: "age", Op: OpGreaterEqual, Value: "18"},
		Like{Column: "name", Pattern: "%jo%"},
		Between{Column: "price", Lo: "10", Hi: "50"},
		RawJSONEquals{Expr: "meta->>'a'", Value: "x"},
		Group{Combinator: CombineAnd},
	}

	kinds := make([]string, 0, len(preds))
	for _, p := range preds {
		switch p.(type) {
		case Equals:
			kinds = append(kinds, "equals")
		case Compare:
			kinds = append(kinds, "compare")
		case Like:
			kinds = append(kinds, "like")
		case Between:
			kinds = append(kinds, "between")
		case RawJSONEquals:
			kinds = append(kinds, "raw")
		case Group:
			kinds = append(kinds, "group")
		}
	}

	assert.Equal(t, []string{"equals", "compare", "like", "between", "raw", "group"}, kinds)
}

func TestRelationNode_Constraints(t *testing.T) {
	body := ColumnFilter{Column: "body", Group: Group{Combinator: CombineAnd}}
	author := ColumnFilter{Column: "author", Group: Group{Combinator: CombineAnd}}
	title := ColumnFilter{Column: "title", Group: Group{Combinator: CombineOr}}

	node := RelationNode{
		Name: "comments",
		Clauses: []RelationClause{
			{Mode: EagerConstrain, Filter: body},
			{Mode: ExistenceConstrain, Filter: author},
			{Mode: EagerConstrain, Filter: title},
		},
	}

	assert.Equal(t, []ColumnFilter{body, title}, node.Constraints(EagerConstrain))
	assert.Equal(t, []ColumnFilter{author}, node.Constraints(ExistenceConstrain))
	assert.Empty(t, RelationNode{Name: "posts"}.Constraints(EagerConstrain))
}

func TestPagination_Offset(t *testing.T) {
	testCases := []struct {
		name string
		page Pagination
		want int
	}{
		{"first page", Pagination{Page: 1, Limit: 25}, 0},
		{"second page", Pagination{Page: 2, Limit: 25}, 25},
		{"custom limit", Pagination{Page: 3, Limit: 10}, 20},
		{"zero page", Pagination{Page: 0, Limit: 10}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.page.Offset())
		})
	}
}

func TestSpecification_FetchAll(t *testing.T) {
	assert.True(t, (&Specification{}).FetchAll())
	assert.False(t, (&Specification{Pagination: &Pagination{Page: 1, Limit: DefaultLimit}}).FetchAll())
}

func TestJSONPathPredicate_Expr(t *testing.T) {
	testCases := []struct {
		path []string
		want string
	}{
		{[]string{"meta"}, "meta"},
		{[]string{"meta", "tags"}, "meta->>'tags'"},
		{[]string{"meta", "a", "b"}, "meta->'a'->>'b'"},
		{[]string{"meta", "a", "b", "c"}, "meta->'a'->'b'->>'c'"},
		{[]string{"meta", "it's"}, "meta->>'it''s'"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, JSONPathPredicate{Path: tc.path}.Expr())
		})
	}
}

func TestLocaleExpr(t *testing.T) {
	assert.Equal(t, "locale->>'en' IS NOT NULL", LocaleExpr("en"))
	assert.Equal(t, "locale->>'x''y' IS NOT NULL", LocaleExpr("x'y"))
}

func TestIsColumn(t *testing.T) {
	for _, s := range []string{"meta", "_x1", "posts.meta"} {
		assert.True(t, IsColumn(s), s)
	}
	for _, s := range []string{"", "1=1 OR meta", "meta)", "a.b.c", "9lives", "me ta"} {
		assert.False(t, IsColumn(s), s)
	}
}
