package loop

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/nickng/amdahl/nest"
)

// Info is a data structure to hold counted loop information,
// for tracking the index variable, its range and its step.
type Info struct {
	indexVar *ast.Ident // Variable holding the index.
	op       token.Token
	bound    ast.Expr

	initVal  int64 // initial value.
	stepVal  int64 // step value.
	boundVal int64 // bound value.

	initOK, stepOK, boundOK bool // Sanity check to ensure header values are constant.
}

// Extract returns the header information of l. Type information is optional
// and only used to fold named constants.
func Extract(l *nest.Loop, info *types.Info) *Info {
	i := &Info{indexVar: l.Var, op: token.ILLEGAL}
	if op, ok := l.Comparator(); ok {
		i.op = op
		i.bound = l.Bound()
		if v, ok := Eval(i.bound, info); ok {
			i.boundVal, i.boundOK = int64Val(v)
		}
	}
	if i.indexVar != nil {
		i.extractInit(l.Init, info)
		i.extractStep(l.Post, info)
	}
	return i
}

// extractInit works out the initial value from i := c, i = c or var i = c.
func (i *Info) extractInit(init ast.Stmt, info *types.Info) {
	var rhs ast.Expr
	switch init := init.(type) {
	case *ast.AssignStmt:
		for n, lhs := range init.Lhs {
			if id, ok := lhs.(*ast.Ident); ok && id.Name == i.indexVar.Name && n < len(init.Rhs) {
				rhs = init.Rhs[n]
			}
		}
	case *ast.DeclStmt:
		if gen, ok := init.Decl.(*ast.GenDecl); ok && gen.Tok == token.VAR {
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for n, name := range vs.Names {
					if name.Name == i.indexVar.Name && n < len(vs.Values) {
						rhs = vs.Values[n]
					}
				}
			}
		}
	}
	if rhs == nil {
		return
	}
	if v, ok := Eval(rhs, info); ok {
		i.initVal, i.initOK = int64Val(v)
	}
}

// extractStep works out the increment from i++, i--, i += c, i -= c,
// i = i + c and i = i - c.
func (i *Info) extractStep(post ast.Stmt, info *types.Info) {
	switch post := post.(type) {
	case *ast.IncDecStmt:
		if !isIdent(post.X, i.indexVar.Name) {
			return
		}
		i.stepVal, i.stepOK = 1, true
		if post.Tok == token.DEC {
			i.stepVal = -1
		}
	case *ast.AssignStmt:
		if len(post.Lhs) != 1 || len(post.Rhs) != 1 || !isIdent(post.Lhs[0], i.indexVar.Name) {
			return
		}
		var op token.Token
		var step ast.Expr
		switch post.Tok {
		case token.ADD_ASSIGN:
			op, step = token.ADD, post.Rhs[0]
		case token.SUB_ASSIGN:
			op, step = token.SUB, post.Rhs[0]
		case token.ASSIGN:
			bin, ok := astutil.Unparen(post.Rhs[0]).(*ast.BinaryExpr)
			if !ok || !isIdent(bin.X, i.indexVar.Name) {
				return
			}
			op, step = bin.Op, bin.Y
		default:
			return
		}
		v, ok := Eval(step, info)
		if !ok {
			return
		}
		val, ok := int64Val(v)
		if !ok {
			return
		}
		switch op {
		case token.ADD:
			i.stepVal, i.stepOK = val, true
		case token.SUB:
			i.stepVal, i.stepOK = -val, true
		}
	}
}

// Var returns the index variable.
func (i *Info) Var() *ast.Ident { return i.indexVar }

// Op returns the comparator of the loop condition.
func (i *Info) Op() token.Token { return i.op }

// Bound returns the bound expression of the loop condition.
func (i *Info) Bound() ast.Expr { return i.bound }

// ParamsOK returns true iff index, init, step and bound are detected correctly.
func (i *Info) ParamsOK() bool {
	return i.indexVar != nil && i.initOK && i.stepOK && i.boundOK && i.stepVal != 0
}

// TripCount returns the number of iterations of the loop.
// ok is false if the header is not a constant counted loop, if the step
// moves the index away from the bound, or if the count does not fit an int64.
func (i *Info) TripCount() (n int64, ok bool) {
	if !i.ParamsOK() {
		return 0, false
	}
	// Exact arithmetic, the bounds may sit at the edge of int64.
	one := constant.MakeInt64(1)
	init, bound := constant.MakeInt64(i.initVal), constant.MakeInt64(i.boundVal)
	step := constant.MakeInt64(i.stepVal)
	var dist constant.Value
	switch i.op {
	case token.LSS, token.LEQ:
		if i.stepVal < 0 {
			return 0, false
		}
		if i.op == token.LEQ {
			bound = constant.BinaryOp(bound, token.ADD, one)
		}
		dist = constant.BinaryOp(bound, token.SUB, init)
	case token.GTR, token.GEQ:
		if i.stepVal > 0 {
			return 0, false
		}
		if i.op == token.GEQ {
			bound = constant.BinaryOp(bound, token.SUB, one)
		}
		dist = constant.BinaryOp(init, token.SUB, bound)
		step = constant.UnaryOp(token.SUB, step, 0)
	default:
		return 0, false
	}
	if constant.Sign(dist) <= 0 {
		return 0, true
	}
	count := constant.BinaryOp(constant.BinaryOp(dist, token.ADD, constant.BinaryOp(step, token.SUB, one)), token.QUO_ASSIGN, step)
	return constant.Int64Val(count)
}

func (i *Info) String() string {
	var buf bytes.Buffer
	if i.indexVar != nil {
		name := i.indexVar.Name
		if i.initOK {
			buf.WriteString(fmt.Sprintf("%s = %d; ", name, i.initVal))
		} else {
			buf.WriteString(fmt.Sprintf("%s = ?; ", name))
		}
		if i.bound != nil {
			bound := types.ExprString(i.bound)
			if i.boundOK {
				bound = fmt.Sprintf("%d", i.boundVal)
			}
			buf.WriteString(fmt.Sprintf("(%s%s%s); ", name, i.op, bound))
		}
		switch {
		case !i.stepOK:
			buf.WriteString(fmt.Sprintf("%s = %s + ?", name, name))
		case i.stepVal > 0:
			buf.WriteString(fmt.Sprintf("%s = %s + %d", name, name, i.stepVal))
		default:
			buf.WriteString(fmt.Sprintf("%s = %s - %d", name, name, -i.stepVal))
		}
	}
	return buf.String()
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := astutil.Unparen(e).(*ast.Ident)
	return ok && id.Name == name
}

func int64Val(v constant.Value) (int64, bool) {
	v = constant.ToInt(v)
	if v.Kind() != constant.Int {
		return 0, false
	}
	return constant.Int64Val(v)
}
