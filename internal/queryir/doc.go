// Package queryir provides the immutable intermediate representation that
// the query-string grammar compiles into.
//
// The IR is the boundary between the grammar compiler and whatever executes
// a request:
//
//	[query params] → [grammar] → [Specification] → [apply] → [executor]
//
// A Specification describes filter intent only. It never decides how a
// predicate is executed and never checks whether a column may be filtered;
// both belong to the caller.
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, so adapters can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Compare:
//	case Like:
//	case Between:
//	case RawJSONEquals:
//	case Group:
//	}
//
// DETERMINISM:
//
// Compiling the same parameters twice yields structurally identical
// specifications. Fingerprint hashes the canonical JSON form of a
// specification so it can key a response cache.
//
// PERMISSIVE OPERANDS:
//
// Empty comparison values and empty range bounds are legal IR. Inspect
// reports them as warnings without failing.
package queryir
