// Package resolve validates and transforms loop nests annotated with parallel
// and collapse directives.
//
// Resolution starts at a directive root and walks down the chain of
// directive-bearing loops. Each level is checked by the structural validator
// and a collapse child is merged into its parent's iteration space. The chain
// bottoms out at an ordinary statement, where the loop body is outlined into a
// nest.Region exactly once.
//
// The input nest is never modified: headers are copied before they are
// rewritten, and a nest that fails to resolve produces no node at all.
//
package resolve
