// Package store executes compiled specifications against SQLite and keeps
// related records in sync.
//
// A Find runs in three steps:
//   - Root query: parent rows, filtered, ordered and paginated
//   - Count query: total matching rows, only when paginated
//   - Eager queries: one per requested relation, keyed by the parent rows
//
// # Critical Patterns
//
// Deterministic results
//   - Every root query ends its ORDER BY with the primary key
//   - Related rows are ordered by their own key
//
// Parameterized SQL
//   - Values are always bound, never interpolated
//   - Column names written by callers are validated as identifiers
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Execute and Synchronizer are shared with the Postgres store through the
// Querier and TxRunner interfaces.
package store
