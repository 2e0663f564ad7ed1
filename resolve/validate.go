package resolve

import (
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/nickng/amdahl/nest"
)

// Validate checks that the condition of l is a relational comparison using
// one of <, >, <= or >=.
func Validate(l *nest.Loop) error {
	if l.Cond == nil {
		return invalidComparator(l.Pos(), "loop has no condition")
	}
	cond, ok := astutil.Unparen(l.Cond).(*ast.BinaryExpr)
	if !ok {
		return invalidComparator(l.Cond.Pos(), "condition is not a comparison")
	}
	switch cond.Op {
	case token.LSS, token.GTR, token.LEQ, token.GEQ:
		return nil
	}
	return invalidComparator(cond.OpPos, "found %s", cond.Op)
}
