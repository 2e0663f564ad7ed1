package nest

import "go/ast"

// Walk calls fn for every go/ast node reachable from s in depth-first order,
// including the headers of nested loops. Traversal of an ast.Node's children
// stops when fn returns false.
func Walk(s Stmt, fn func(ast.Node) bool) {
	switch s := s.(type) {
	case nil:
	case *Loop:
		for _, n := range []ast.Node{s.Init, s.Cond, s.Post} {
			if n != nil {
				ast.Inspect(n, fn)
			}
		}
		Walk(s.Body, fn)
	case *Block:
		for _, stmt := range s.List {
			Walk(stmt, fn)
		}
	case *Plain:
		ast.Inspect(s.Stmt, fn)
	case *Region:
		Walk(s.Payload, fn)
	}
}

// Loops returns every Loop in s, outermost first.
func Loops(s Stmt) []*Loop {
	var loops []*Loop
	var visit func(Stmt)
	visit = func(s Stmt) {
		switch s := s.(type) {
		case *Loop:
			loops = append(loops, s)
			visit(s.Body)
		case *Block:
			for _, stmt := range s.List {
				visit(stmt)
			}
		case *Region:
			visit(s.Payload)
		}
	}
	visit(s)
	return loops
}
