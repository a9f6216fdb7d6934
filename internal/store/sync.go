package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/querysql"
)

var (
	// ErrNotRelated indicates an update targeted a record that does not
	// belong to the parent.
	ErrNotRelated = errors.New("record is not related to parent")

	// ErrRelationKind indicates a sync call for the wrong relation kind.
	ErrRelationKind = errors.New("relation kind mismatch")
)

// Tx is the subset of a transaction the synchronizer needs.
type Tx interface {
	Exec(ctx context.Context, stmt querysql.Statement) (int64, error)
	QueryRows(ctx context.Context, stmt querysql.Statement) ([]Row, error)
}

// TxRunner runs fn in a transaction, committing only when fn returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Synchronizer persists nested relation payloads for a parent record.
// Every call runs in one transaction.
type Synchronizer struct {
	runner  TxRunner
	catalog *catalog.Catalog
	dialect querysql.Dialect
}

// NewSynchronizer creates a synchronizer writing through runner.
func NewSynchronizer(runner TxRunner, cat *catalog.Catalog, d querysql.Dialect) *Synchronizer {
	return &Synchronizer{runner: runner, catalog: cat, dialect: d}
}

func (s *Synchronizer) relation(resource, name string, kinds ...catalog.Kind) (catalog.Relation, error) {
	res, ok := s.catalog.Lookup(resource)
	if !ok {
		return catalog.Relation{}, fmt.Errorf("%w: %q", querysql.ErrUnknownResource, resource)
	}
	rel, ok := res.Relation(name)
	if !ok {
		return catalog.Relation{}, fmt.Errorf("%w: %s.%s", querysql.ErrUnknownRelation, resource, name)
	}
	for _, k := range kinds {
		if rel.Kind == k {
			return rel, nil
		}
	}
	return catalog.Relation{}, fmt.Errorf("%w: %s.%s is %s", ErrRelationKind, resource, name, rel.Kind)
}

// SyncManyToMany replaces the parent's pivot rows with one row per id.
func (s *Synchronizer) SyncManyToMany(ctx context.Context, resource string, parentKey any, relation string, ids []any) error {
	rel, err := s.relation(resource, relation, catalog.ManyToMany)
	if err != nil {
		return err
	}

	return s.runner.InTx(ctx, func(tx Tx) error {
		detach := querysql.Statement{
			SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = %s", rel.Pivot, rel.PivotLocal, s.dialect.Placeholder(1)),
			Args: []any{parentKey},
		}
		if _, err := tx.Exec(ctx, detach); err != nil {
			return fmt.Errorf("detach %s: %w", relation, err)
		}

		attach := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, %s)",
			rel.Pivot, rel.PivotLocal, rel.PivotForeign, s.dialect.Placeholder(1), s.dialect.Placeholder(2))
		for _, id := range ids {
			if _, err := tx.Exec(ctx, querysql.Statement{SQL: attach, Args: []any{parentKey, id}}); err != nil {
				return fmt.Errorf("attach %s %v: %w", relation, id, err)
			}
		}
		return nil
	})
}

// SyncHasMany creates rows without a key and updates rows with one. An
// update that matches no row of this parent fails with ErrNotRelated and
// rolls back the whole call.
func (s *Synchronizer) SyncHasMany(ctx context.Context, resource string, parentKey any, relation string, rows []Row) error {
	rel, err := s.relation(resource, relation, catalog.HasMany)
	if err != nil {
		return err
	}

	return s.runner.InTx(ctx, func(tx Tx) error {
		for i, row := range rows {
			key, hasKey := row[rel.Key]
			if !hasKey || key == nil {
				if err := s.insert(ctx, tx, rel, parentKey, row); err != nil {
					return fmt.Errorf("%s[%d]: %w", relation, i, err)
				}
				continue
			}
			if err := s.update(ctx, tx, rel, parentKey, key, row); err != nil {
				return fmt.Errorf("%s[%d]: %w", relation, i, err)
			}
		}
		return nil
	})
}

// SyncHasOne creates the related row when the parent has none, and
// updates the existing one otherwise.
func (s *Synchronizer) SyncHasOne(ctx context.Context, resource string, parentKey any, relation string, row Row) error {
	rel, err := s.relation(resource, relation, catalog.HasOne)
	if err != nil {
		return err
	}

	return s.runner.InTx(ctx, func(tx Tx) error {
		existing, err := tx.QueryRows(ctx, querysql.Statement{
			SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s ASC LIMIT 1",
				rel.Key, rel.Table, rel.ForeignKey, s.dialect.Placeholder(1), rel.Key),
			Args: []any{parentKey},
		})
		if err != nil {
			return fmt.Errorf("find %s: %w", relation, err)
		}
		if len(existing) == 0 {
			return s.insert(ctx, tx, rel, parentKey, row)
		}
		return s.update(ctx, tx, rel, parentKey, existing[0][rel.Key], row)
	})
}

// insert writes row with its foreign key set to parentKey.
func (s *Synchronizer) insert(ctx context.Context, tx Tx, rel catalog.Relation, parentKey any, row Row) error {
	columns, err := writableColumns(rel, row)
	if err != nil {
		return err
	}

	args := make([]any, 0, len(columns)+1)
	marks := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		args = append(args, row[c])
		marks = append(marks, s.dialect.Placeholder(len(args)))
	}
	columns = append(columns, rel.ForeignKey)
	args = append(args, parentKey)
	marks = append(marks, s.dialect.Placeholder(len(args)))

	stmt := querysql.Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			rel.Table, strings.Join(columns, ", "), strings.Join(marks, ", ")),
		Args: args,
	}
	if _, err := tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("insert into %s: %w", rel.Table, err)
	}
	return nil
}

// update rewrites the row with the given key, scoped to parentKey.
func (s *Synchronizer) update(ctx context.Context, tx Tx, rel catalog.Relation, parentKey, key any, row Row) error {
	columns, err := writableColumns(rel, row)
	if err != nil {
		return err
	}

	args := make([]any, 0, len(columns)+3)
	sets := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		args = append(args, row[c])
		sets = append(sets, c+" = "+s.dialect.Placeholder(len(args)))
	}
	args = append(args, parentKey)
	sets = append(sets, rel.ForeignKey+" = "+s.dialect.Placeholder(len(args)))

	args = append(args, key)
	keyMark := s.dialect.Placeholder(len(args))
	args = append(args, parentKey)
	parentMark := s.dialect.Placeholder(len(args))

	stmt := querysql.Statement{
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s AND %s = %s",
			rel.Table, strings.Join(sets, ", "), rel.Key, keyMark, rel.ForeignKey, parentMark),
		Args: args,
	}
	n, err := tx.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("update %s: %w", rel.Table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s = %v", ErrNotRelated, rel.Table, rel.Key, key)
	}
	return nil
}

// writableColumns returns row's columns in sorted order, without the key
// and foreign key.
func writableColumns(rel catalog.Relation, row Row) ([]string, error) {
	columns := make([]string, 0, len(row))
	for c := range row {
		if c == rel.Key || c == rel.ForeignKey {
			continue
		}
		if !catalog.IsIdentifier(c) {
			return nil, fmt.Errorf("%w: %q", querysql.ErrInvalidColumn, c)
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns, nil
}
