// Package pgstore executes specifications against PostgreSQL through a
// pgx connection pool.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/store"
)

// Store wraps a Postgres connection pool.
type Store struct {
	Pool    *pgxpool.Pool
	catalog *catalog.Catalog
}

var (
	_ store.Querier  = (*Store)(nil)
	_ store.TxRunner = (*Store)(nil)
)

// Open connects to dsn and verifies the connection.
//
// Queries use the simple protocol: filter operands are always strings and
// the server coerces them to the column type.
func Open(ctx context.Context, dsn string, cat *catalog.Catalog) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{Pool: pool, catalog: cat}, nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// Catalog returns the catalog the store resolves resources with.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Find compiles spec for resource and executes it.
func (s *Store) Find(ctx context.Context, resource string, spec *queryir.Specification) (*store.Result, error) {
	plan, err := querysql.Compile(querysql.Postgres, s.catalog, resource, spec)
	if err != nil {
		return nil, err
	}
	return store.Execute(ctx, s, plan)
}

// Synchronizer returns a relation synchronizer over this store.
func (s *Store) Synchronizer() *store.Synchronizer {
	return store.NewSynchronizer(s, s.catalog, querysql.Postgres)
}

// ApplySchema executes schema.
func (s *Store) ApplySchema(ctx context.Context, schema string) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// QueryRows implements store.Querier.
func (s *Store) QueryRows(ctx context.Context, stmt querysql.Statement) ([]store.Row, error) {
	return queryRows(ctx, s.Pool, stmt)
}

// QueryCount implements store.Querier.
func (s *Store) QueryCount(ctx context.Context, stmt querysql.Statement) (int64, error) {
	var n int64
	if err := s.Pool.QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// InTx implements store.TxRunner.
func (s *Store) InTx(ctx context.Context, fn func(store.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(pgTx{tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// queryer is satisfied by *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryRows(ctx context.Context, q queryer, stmt querysql.Statement) ([]store.Row, error) {
	rows, err := q.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []store.Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(store.Row, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Exec(ctx context.Context, stmt querysql.Statement) (int64, error) {
	tag, err := t.tx.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t pgTx) QueryRows(ctx context.Context, stmt querysql.Statement) ([]store.Row, error) {
	return queryRows(ctx, t.tx, stmt)
}
