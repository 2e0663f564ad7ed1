package resolve

import (
	"go/ast"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/nickng/amdahl/loop"
	"github.com/nickng/amdahl/nest"
)

// collapse merges inner, the collapse child of outer, into a single loop.
//
// The merged loop keeps the induction variable and comparator of outer and
// iterates up to outerBound * innerBound. Its body is the body of inner; the
// header of inner is discarded and returned, stamped with level, so the
// caller can keep track of it.
//
// References to the induction variable of inner in the body are not
// rewritten here; see IndexPolicy.
func (r *Resolver) collapse(outer, inner *nest.Loop, level int) (merged, header *nest.Loop, err error) {
	if err := Validate(outer); err != nil {
		return nil, nil, err
	}
	if err := Validate(inner); err != nil {
		return nil, nil, err
	}
	cond := astutil.Unparen(outer.Cond).(*ast.BinaryExpr)

	merged = outer.Clone()
	merged.Cond = &ast.BinaryExpr{
		X:     cond.X,
		OpPos: cond.OpPos,
		Op:    cond.Op,
		Y:     loop.Product(cond.Y, inner.Bound()),
	}
	merged.Body = inner.Body

	header = inner.Clone()
	header.Directive = nest.Annotate(inner.Directive, level)

	r.Debugf("%s collapse level %d: %s", r.Module(), level, merged)
	return merged, header, nil
}
