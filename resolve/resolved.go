package resolve

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/types"

	"github.com/nickng/amdahl/loop"
	"github.com/nickng/amdahl/nest"
)

// Resolved is a fully resolved directive nest, ready for code generation.
type Resolved struct {
	Loop     *nest.Loop   // Root of the nest.
	Dispatch *nest.Loop   // Loop whose body is Region; Loop itself unless a collapse root encloses a parallel loop.
	Region   *nest.Region // The only captured region of the nest.
	Chain    []*nest.Loop // Original headers of every level, outermost first.
	State    State

	info *types.Info
}

// Kind returns the directive kind of the root.
func (r *Resolved) Kind() nest.Kind { return r.Loop.Kind() }

// Var returns the induction variable of the dispatching loop.
func (r *Resolved) Var() *ast.Ident { return r.Dispatch.Var }

// Cond returns the (possibly collapsed) condition of the dispatching loop.
func (r *Resolved) Cond() ast.Expr { return r.Dispatch.Cond }

// Bound returns the final bound of the dispatching loop.
func (r *Resolved) Bound() ast.Expr { return r.Dispatch.Bound() }

// Header returns the loop header information of the dispatching loop.
func (r *Resolved) Header() *loop.Info { return loop.Extract(r.Dispatch, r.info) }

// TripCount returns the combined trip count of the dispatching loop, if the
// bound is constant.
func (r *Resolved) TripCount() (int64, bool) { return r.Header().TripCount() }

// Captures returns the captured variables of the region.
func (r *Resolved) Captures() []*nest.Capture { return r.Region.Captures }

// Levels returns the number of directive levels of the nest.
func (r *Resolved) Levels() int { return len(r.Chain) }

func (r *Resolved) String() string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s %s {", r.Kind(), r.Dispatch))
	for i, c := range r.Region.Captures {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(c.String())
	}
	buf.WriteString("}")
	return buf.String()
}
