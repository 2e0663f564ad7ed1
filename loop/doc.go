// Package loop provides utilities for counted loop headers.
//
// Extract inspects the header of a nest.Loop to work out the index variable,
// initial value, increment and bound where possible. Constant parts of the
// header are folded with Eval so that the number of iterations of a loop, or
// of a collapsed loop nest, can be computed at compile time.
package loop
