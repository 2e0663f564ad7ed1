package resolve

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/nickng/amdahl/loop"
	"github.com/nickng/amdahl/nest"
)

// outline replaces the body of cur, the loop at the bottom of the chain, with
// a Region. It runs once per nest.
func (r *Resolver) outline(cur *nest.Loop, ctx Context) (*Resolved, error) {
	if ctx.Captured {
		return nil, malformed(cur.Pos(), "nest is already captured")
	}
	ctx.State = Capturing
	payload := cur.Body
	if err := r.checkCollapsedRefs(payload, ctx); err != nil {
		return nil, err
	}

	region := &nest.Region{
		Params: []*nest.Param{
			{Name: r.identity, Kind: nest.IdentityParam},
			{Name: r.shared, Kind: nest.ContextParam},
		},
		Captures:  r.captures(payload, ctx.chain),
		Payload:   payload,
		NestLevel: cur.Directive.Level(),
	}
	if r.policy == IndexDecompose {
		region.Bindings = r.bindings(ctx)
	}
	cur.Body = region
	ctx.Captured, ctx.State = true, Done

	r.Debugf("%s outlined body of %s: %d captures, %d bindings",
		r.Module(), cur, len(region.Captures), len(region.Bindings))
	return &Resolved{Loop: cur, Dispatch: cur, Region: region, Chain: ctx.chain, State: ctx.State, info: r.info}, nil
}

// checkCollapsedRefs rejects a payload that uses the induction variable of a
// collapsed loop when the policy is IndexRestrict.
func (r *Resolver) checkCollapsedRefs(payload nest.Stmt, ctx Context) error {
	if r.policy != IndexRestrict {
		return nil
	}
	collapsed := ctx.collapsed()
	var err error
	nest.Walk(payload, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if err != nil || !ok {
			return err == nil
		}
		for _, l := range collapsed {
			if l.Var != nil && r.sameVar(id, l.Var) {
				err = malformed(id.Pos(), "body references %s, the induction variable of a collapsed loop", id.Name)
				return false
			}
		}
		return true
	})
	return err
}

// sameVar reports whether the use id refers to the variable named by def.
// Without type information the names are compared.
func (r *Resolver) sameVar(id, def *ast.Ident) bool {
	if r.info == nil {
		return id.Name == def.Name
	}
	obj := r.info.ObjectOf(def)
	return obj != nil && r.info.Uses[id] == obj
}

// bindings recovers the induction variables of every merged segment.
// The segment holding the region is decomposed from the identity parameter,
// enclosing sequential segments from their own induction variable.
func (r *Resolver) bindings(ctx Context) []*nest.Binding {
	var bindings []*nest.Binding
	for i, seg := range ctx.segments {
		if len(seg) < 2 {
			continue
		}
		base := r.identity
		if i < len(ctx.segments)-1 {
			if seg[0].Var == nil {
				continue
			}
			base = seg[0].Var.Name
		}
		bindings = append(bindings, decompose(base, seg)...)
	}
	return bindings
}

// decompose returns v_m = base / (e_m+1 * ... * e_k) % e_m for every loop m
// of seg, where e_m is the bound of loop m. Iteration spaces are taken to
// start at zero.
func decompose(base string, seg []*nest.Loop) []*nest.Binding {
	k := len(seg) - 1
	var bindings []*nest.Binding
	for m, l := range seg {
		var value ast.Expr = ast.NewIdent(base)
		if m < k {
			var extents []ast.Expr
			for _, inner := range seg[m+1:] {
				extents = append(extents, inner.Bound())
			}
			value = loop.Binary(value, token.QUO, loop.Product(extents...))
		}
		if m > 0 {
			value = loop.Binary(value, token.REM, l.Bound())
		}
		if l.Var != nil {
			bindings = append(bindings, &nest.Binding{Var: ast.NewIdent(l.Var.Name), Value: value})
		}
	}
	return bindings
}

// loopVars returns the variables of the chain headers. They are bound by the
// dispatch rather than captured.
func (r *Resolver) loopVars(chain []*nest.Loop) map[types.Object]bool {
	vars := make(map[types.Object]bool)
	if r.info == nil {
		return vars
	}
	for _, l := range chain {
		if l.Var == nil {
			continue
		}
		if obj := r.info.ObjectOf(l.Var); obj != nil {
			vars[obj] = true
		}
	}
	return vars
}
