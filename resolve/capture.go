package resolve

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/nickng/amdahl/nest"
)

// Reasons for capturing a variable by reference.
const (
	reasonAddr      = "address taken"
	reasonMutated   = "mutated"
	reasonAggregate = "aggregate"
)

// usage records how the payload uses a variable.
type usage struct {
	addr    bool
	mutated bool
}

// captures returns the free variables of payload in order of first use.
//
// A free variable is a local variable declared outside payload that is not an
// induction variable of the chain. Package-level variables are shared by all
// workers and are not captured.
func (r *Resolver) captures(payload nest.Stmt, chain []*nest.Loop) []*nest.Capture {
	if r.info == nil {
		r.Warnf("%s no type information, captured variables are not computed", r.Module())
		return nil
	}
	local := r.loopVars(chain)
	uses := r.usages(payload)

	var caps []*nest.Capture
	seen := make(map[*types.Var]bool)
	nest.Walk(payload, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		v, ok := r.info.Uses[id].(*types.Var)
		if !ok || seen[v] || local[v] || !r.free(v, payload) {
			return true
		}
		seen[v] = true
		c := &nest.Capture{Var: v, Mode: nest.ByValue}
		switch u := uses[v]; {
		case u.addr:
			c.Mode, c.Reason = nest.ByRef, reasonAddr
		case u.mutated:
			c.Mode, c.Reason = nest.ByRef, reasonMutated
		case isAggregate(v.Type()):
			c.Mode, c.Reason = nest.ByRef, reasonAggregate
		}
		r.Debugf("%s capture %s", r.Module(), c)
		caps = append(caps, c)
		return true
	})
	return caps
}

// free reports whether v is a local variable declared outside payload.
func (r *Resolver) free(v *types.Var, payload nest.Stmt) bool {
	if v.IsField() || v.Pkg() == nil || v.Parent() == nil {
		return false
	}
	if v.Parent() == v.Pkg().Scope() {
		return false
	}
	return !within(v.Pos(), payload)
}

func within(pos token.Pos, s nest.Stmt) bool {
	return pos.IsValid() && s.Pos() <= pos && pos < s.End()
}

// usages finds the variables whose address is taken or which are assigned
// in payload.
func (r *Resolver) usages(payload nest.Stmt) map[*types.Var]usage {
	uses := make(map[*types.Var]usage)
	mark := func(e ast.Expr, addr bool) {
		if v := r.rootVar(e); v != nil {
			u := uses[v]
			if addr {
				u.addr = true
			} else {
				u.mutated = true
			}
			uses[v] = u
		}
	}
	nest.Walk(payload, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.UnaryExpr:
			if n.Op == token.AND {
				mark(n.X, true)
			}
		case *ast.AssignStmt:
			for _, lhs := range n.Lhs {
				if id, ok := lhs.(*ast.Ident); ok && n.Tok == token.DEFINE && r.info.Defs[id] != nil {
					continue // Declares a new variable.
				}
				mark(lhs, false)
			}
		case *ast.IncDecStmt:
			mark(n.X, false)
		case *ast.RangeStmt:
			if n.Tok == token.ASSIGN {
				if n.Key != nil {
					mark(n.Key, false)
				}
				if n.Value != nil {
					mark(n.Value, false)
				}
			}
		case *ast.SelectorExpr:
			// Calling a pointer method on an addressable value takes its address.
			if sel, ok := r.info.Selections[n]; ok && sel.Kind() == types.MethodVal && !sel.Indirect() {
				if sig, ok := sel.Obj().Type().(*types.Signature); ok && sig.Recv() != nil {
					if _, ptr := sig.Recv().Type().(*types.Pointer); ptr {
						if _, xptr := sel.Recv().Underlying().(*types.Pointer); !xptr {
							mark(n.X, true)
						}
					}
				}
			}
		}
		return true
	})
	return uses
}

// rootVar returns the variable whose storage e denotes, or nil if e reaches
// its storage through a pointer, slice or map.
func (r *Resolver) rootVar(e ast.Expr) *types.Var {
	switch e := e.(type) {
	case *ast.Ident:
		v, _ := r.info.ObjectOf(e).(*types.Var)
		return v
	case *ast.ParenExpr:
		return r.rootVar(e.X)
	case *ast.SelectorExpr:
		if sel, ok := r.info.Selections[e]; ok && sel.Kind() == types.FieldVal && !sel.Indirect() {
			return r.rootVar(e.X)
		}
	case *ast.IndexExpr:
		if t := r.info.TypeOf(e.X); t != nil {
			if _, ok := t.Underlying().(*types.Array); ok {
				return r.rootVar(e.X)
			}
		}
	}
	return nil
}

// isAggregate reports whether values of t are structs or arrays, which are
// passed by reference rather than copied into every worker.
func isAggregate(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Struct, *types.Array:
		return true
	}
	return false
}
