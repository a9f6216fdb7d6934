// Package grammar compiles query-string filter parameters into a
// queryir.Specification.
//
// The grammar overloads punctuation with context-sensitive meaning:
//
//	age=18,25                       AND group of equalities
//	|age=18,25                      OR group
//	price=10<>50                    open range (10 < price < 50)
//	price=|10<>50                   range joined to its siblings with OR
//	name=%jo%                       LIKE pattern
//	age=>=18                        comparison (>=, <=, !=, <, >)
//	{meta->>'kind'}=book            raw expression equality
//	relations=posts@comments^*body=%spam%;author=admin
//	json=meta.tags:urgent
//	array=roles:admin,editor;tags:go
//	locale=en
//	orderBy=created_at,id&direction=asc
//	page=2&limit=10
//
// All functions are pure and safe for concurrent use. Compilation is
// atomic: Assemble returns either a complete Specification or an error.
//
// Keys and values are NFC-normalized before compiling.
//
// Operands are permissive. Empty or unbalanced operands compile into
// predicates carrying empty strings; use queryir.Inspect to surface them.
// A MalformedGrammar error is returned only for:
//
//   - a missing required separator (json and array ':', relation clause '=')
//   - a json column that is not a plain identifier
//   - a direction other than asc or desc
//   - a page or limit that is not a positive integer
package grammar
