package store

import (
	"context"
	"fmt"

	"github.com/roach88/sieve/internal/querysql"
)

// Row is one result row keyed by column name. Eager-loaded relations are
// attached under the relation name.
type Row map[string]any

// PageInfo describes the page a Result holds.
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Result is the outcome of one Find.
type Result struct {
	Rows []Row     `json:"data"`
	Page *PageInfo `json:"page,omitempty"`
}

// Querier runs read statements.
type Querier interface {
	QueryRows(ctx context.Context, stmt querysql.Statement) ([]Row, error)
	QueryCount(ctx context.Context, stmt querysql.Statement) (int64, error)
}

// Execute runs a plan: the root query, the count query when paginated, and
// one query per eager load.
func Execute(ctx context.Context, q Querier, plan *querysql.Plan) (*Result, error) {
	rows, err := q.QueryRows(ctx, plan.Root)
	if err != nil {
		return nil, fmt.Errorf("root query: %w", err)
	}

	result := &Result{Rows: rows}
	if plan.Page != nil {
		total, err := q.QueryCount(ctx, plan.Count)
		if err != nil {
			return nil, fmt.Errorf("count query: %w", err)
		}
		result.Page = &PageInfo{Page: plan.Page.Page, Limit: plan.Page.Limit, Total: total}
	}

	for _, eager := range plan.Eager {
		if err := loadEager(ctx, q, eager, rows); err != nil {
			return nil, fmt.Errorf("eager load %s: %w", eager.Name, err)
		}
	}
	return result, nil
}

// loadEager fetches related rows for every parent and attaches them under
// the relation name: a list for has_many and many_to_many, a row or nil
// otherwise. A later load of the same relation replaces the earlier one.
func loadEager(ctx context.Context, q Querier, eager querysql.Eager, parents []Row) error {
	parentColumn := eager.ParentColumn()

	var keys []any
	seen := make(map[string]bool)
	for _, parent := range parents {
		v := parent[parentColumn]
		if v == nil {
			continue
		}
		k := keyOf(v)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, v)
		}
	}

	byParent := make(map[string][]Row)
	if len(keys) > 0 {
		related, err := q.QueryRows(ctx, eager.Statement(keys))
		if err != nil {
			return err
		}
		for _, row := range related {
			k := keyOf(row[querysql.ParentKeyColumn])
			delete(row, querysql.ParentKeyColumn)
			byParent[k] = append(byParent[k], row)
		}
	}

	many := eager.Relation.Kind.Many()
	for _, parent := range parents {
		var matches []Row
		if v := parent[parentColumn]; v != nil {
			matches = byParent[keyOf(v)]
		}

		switch {
		case many && matches == nil:
			parent[eager.Name] = []Row{}
		case many:
			parent[eager.Name] = matches
		case len(matches) == 0:
			parent[eager.Name] = nil
		default:
			parent[eager.Name] = matches[0]
		}
	}
	return nil
}

// keyOf normalizes key values so int64 and string keys from different
// drivers compare equal.
func keyOf(v any) string {
	return fmt.Sprint(v)
}
