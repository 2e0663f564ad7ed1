// Package nest defines the representation of a nest of counted loops annotated
// with parallel-execution directives.
//
// A nest is made of Stmt nodes. A Loop is one counted loop (init, condition,
// increment, body) tagged with a Directive; a Block is a braced statement list;
// a Plain wraps any other go/ast statement untouched; a Region is the captured
// unit of work produced by outlining.
//
// The Directive and Stmt sets are closed: the only implementations are the
// ones in this package, so a type switch over them is exhaustive.
//
package nest
