package nest

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
)

// ParamKind is the role of an implicit parameter of a Region.
type ParamKind int

const (
	IdentityParam ParamKind = iota // Logical index in the combined iteration space.
	ContextParam                   // Shared context of the enclosing function.
)

func (k ParamKind) String() string {
	switch k {
	case IdentityParam:
		return "identity"
	case ContextParam:
		return "context"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Param is an implicit parameter of a Region.
type Param struct {
	Name string
	Kind ParamKind
}

// CaptureMode is how a free variable is passed to a Region.
type CaptureMode int

const (
	ByValue CaptureMode = iota
	ByRef
)

func (m CaptureMode) String() string {
	switch m {
	case ByValue:
		return "value"
	case ByRef:
		return "ref"
	}
	return fmt.Sprintf("CaptureMode(%d)", int(m))
}

// Capture is a free variable of a Region.
type Capture struct {
	Var    *types.Var
	Mode   CaptureMode
	Reason string // Why the variable is captured by reference, empty if by value.
}

func (c *Capture) Name() string { return c.Var.Name() }

func (c *Capture) String() string {
	if c.Reason != "" {
		return fmt.Sprintf("%s:%s (%s, %s)", c.Var.Name(), c.Var.Type(), c.Mode, c.Reason)
	}
	return fmt.Sprintf("%s:%s (%s)", c.Var.Name(), c.Var.Type(), c.Mode)
}

// Binding recovers the value of a collapsed induction variable from the
// identity parameter.
type Binding struct {
	Var   *ast.Ident
	Value ast.Expr
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s = %s", b.Var.Name, types.ExprString(b.Value))
}

// Region is a loop body outlined as a unit of work.
//
// Params always holds the identity parameter followed by the shared-context
// parameter. Payload is the original body, moved rather than copied.
type Region struct {
	Params    []*Param
	Captures  []*Capture
	Bindings  []*Binding
	Payload   Stmt
	NestLevel int
}

func (r *Region) Pos() token.Pos { return r.Payload.Pos() }
func (r *Region) End() token.Pos { return r.Payload.End() }
func (*Region) stmtNode()        {}

// Param returns the first parameter of kind k, or nil.
func (r *Region) Param(k ParamKind) *Param {
	for _, p := range r.Params {
		if p.Kind == k {
			return p
		}
	}
	return nil
}

// Capture returns the capture of the variable named name, or nil.
func (r *Region) Capture(name string) *Capture {
	for _, c := range r.Captures {
		if c.Var.Name() == name {
			return c
		}
	}
	return nil
}
