// Package eval evaluates manifest expressions against one raw row.
//
// An Evaluator is built once per run from a validated manifest and a
// custom function registry. Each row (or each row of a group) gets a fresh
// Scope holding the row, the per-row variable memo and the stack of
// $foreach items. Scopes are not safe for concurrent use; an Evaluator is
// safe to share between sequential scopes.
//
// Null handling follows the manifest language:
//   - a declared column that is missing or empty in the row reads as null;
//   - $concat yields null when any operand is null, unless $include_nulls;
//   - a null condition is false;
//   - $split_json and $split of null yield an empty list.
//
// Errors are wrapped in *report.RowError carrying the manifest path of the
// innermost failing node.
package eval
