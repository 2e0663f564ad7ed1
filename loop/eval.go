package loop

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
)

// Eval folds a constant integer expression.
//
// Expressions recorded in info are looked up first; expressions without type
// information, e.g. bounds built by collapsing, are folded structurally from
// literals, named constants and arithmetic operators.
func Eval(expr ast.Expr, info *types.Info) (constant.Value, bool) {
	if expr == nil {
		return nil, false
	}
	if info != nil {
		if tv, ok := info.Types[expr]; ok && tv.Value != nil {
			return tv.Value, true
		}
	}
	switch expr := expr.(type) {
	case *ast.BasicLit:
		if expr.Kind != token.INT {
			return nil, false
		}
		v := constant.MakeFromLiteral(expr.Value, expr.Kind, 0)
		return v, v.Kind() == constant.Int
	case *ast.ParenExpr:
		return Eval(expr.X, info)
	case *ast.Ident:
		if info == nil {
			return nil, false
		}
		if c, ok := info.ObjectOf(expr).(*types.Const); ok {
			return c.Val(), true
		}
	case *ast.UnaryExpr:
		x, ok := Eval(expr.X, info)
		if !ok || x.Kind() != constant.Int || (expr.Op != token.SUB && expr.Op != token.ADD) {
			return nil, false
		}
		return constant.UnaryOp(expr.Op, x, 0), true
	case *ast.BinaryExpr:
		x, ok := Eval(expr.X, info)
		if !ok {
			return nil, false
		}
		y, ok := Eval(expr.Y, info)
		if !ok || x.Kind() != constant.Int || y.Kind() != constant.Int {
			return nil, false
		}
		switch expr.Op {
		case token.ADD, token.SUB, token.MUL:
			return constant.BinaryOp(x, expr.Op, y), true
		case token.QUO, token.REM:
			if constant.Sign(y) == 0 {
				return nil, false
			}
			if expr.Op == token.QUO {
				return constant.BinaryOp(x, token.QUO_ASSIGN, y), true // Integer division.
			}
			return constant.BinaryOp(x, token.REM, y), true
		}
	}
	return nil, false
}

// Product returns the expression b0 * b1 * ... * bn.
// Operands are parenthesised only where multiplication would bind tighter.
func Product(bounds ...ast.Expr) ast.Expr {
	if len(bounds) == 0 {
		return nil
	}
	prod := bounds[0]
	for _, b := range bounds[1:] {
		prod = Binary(prod, token.MUL, b)
	}
	return prod
}

// Binary returns x op y, parenthesising operands of lower precedence.
// A right operand of equal precedence is parenthesised as well since the
// operators are left-associative.
func Binary(x ast.Expr, op token.Token, y ast.Expr) ast.Expr {
	if bin, ok := x.(*ast.BinaryExpr); ok && bin.Op.Precedence() < op.Precedence() {
		x = &ast.ParenExpr{X: x}
	}
	if bin, ok := y.(*ast.BinaryExpr); ok && bin.Op.Precedence() <= op.Precedence() {
		y = &ast.ParenExpr{X: y}
	}
	return &ast.BinaryExpr{X: x, Op: op, Y: y}
}
