// Package scan recognises loop directives written as line comments in Go
// source and builds the loop nests they annotate.
//
// A directive is a // comment whose text starts with the directive prefix,
// e.g.
//
//	//amdahl:parallel
//	for i := 0; i < n; i++ {
//		//amdahl:collapse
//		for j := 0; j < m; j++ {
//			...
//		}
//	}
//
// The comment group holding the directive must end on the line right above
// the for keyword. Only counted for loops may carry a directive.
package scan
