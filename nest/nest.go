package nest

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"
)

// Stmt is a statement in a loop nest.
type Stmt interface {
	Pos() token.Pos
	End() token.Pos
	stmtNode()
}

// Loop is a counted loop.
type Loop struct {
	For  token.Pos // Position of the "for" keyword.
	Init ast.Stmt  // Initialiser; may be nil.
	Cond ast.Expr  // Condition; may be nil.
	Post ast.Stmt  // Increment; may be nil.

	Var  *ast.Ident // Induction variable; may be nil.
	Body Stmt

	Directive Directive
	Source    *ast.ForStmt // Syntax the loop was built from, if any.
}

// Block is a braced list of statements.
type Block struct {
	Lbrace, Rbrace token.Pos
	List           []Stmt
}

// Plain is an ordinary statement that is not part of the loop nest structure.
type Plain struct {
	Stmt ast.Stmt
}

func (l *Loop) Pos() token.Pos { return l.For }

func (l *Loop) End() token.Pos {
	if l.Body != nil {
		return l.Body.End()
	}
	if l.Source != nil {
		return l.Source.End()
	}
	return token.NoPos
}

func (b *Block) Pos() token.Pos { return b.Lbrace }
func (b *Block) End() token.Pos {
	if b.Rbrace.IsValid() {
		return b.Rbrace + 1
	}
	if n := len(b.List); n > 0 {
		return b.List[n-1].End()
	}
	return token.NoPos
}

func (p *Plain) Pos() token.Pos { return p.Stmt.Pos() }
func (p *Plain) End() token.Pos { return p.Stmt.End() }

func (*Loop) stmtNode()  {}
func (*Block) stmtNode() {}
func (*Plain) stmtNode() {}

// Kind returns the directive kind of the loop.
func (l *Loop) Kind() Kind { return KindOf(l.Directive) }

// Comparator returns the relational operator of the loop condition.
// ok is false if the condition is not a binary expression.
func (l *Loop) Comparator() (op token.Token, ok bool) {
	if cond := l.binaryCond(); cond != nil {
		return cond.Op, true
	}
	return token.ILLEGAL, false
}

// Bound returns the right hand side of the loop condition, or nil.
func (l *Loop) Bound() ast.Expr {
	if cond := l.binaryCond(); cond != nil {
		return cond.Y
	}
	return nil
}

func (l *Loop) binaryCond() *ast.BinaryExpr {
	if cond, ok := astutil.Unparen(l.Cond).(*ast.BinaryExpr); ok {
		return cond
	}
	return nil
}

// Clone returns a copy of the loop header sharing the body.
func (l *Loop) Clone() *Loop {
	c := *l
	return &c
}

// Resolved returns true if the loop body has been outlined.
func (l *Loop) Resolved() bool {
	_, ok := l.Body.(*Region)
	return ok
}

// String renders the loop header, e.g. "for i := 0; i < 4; i++".
func (l *Loop) String() string {
	var buf bytes.Buffer
	buf.WriteString("for ")
	if l.Init != nil || l.Post != nil {
		buf.WriteString(nodeString(l.Init))
		buf.WriteString("; ")
	}
	if l.Cond != nil {
		buf.WriteString(types.ExprString(l.Cond))
	}
	if l.Init != nil || l.Post != nil {
		buf.WriteString("; ")
		buf.WriteString(nodeString(l.Post))
	}
	return buf.String()
}

// Unwrap returns the single statement of a one-statement block, or s itself.
// An empty block unwraps to nil.
func Unwrap(s Stmt) Stmt {
	b, ok := s.(*Block)
	if !ok {
		return s
	}
	switch len(b.List) {
	case 0:
		return nil
	case 1:
		return b.List[0]
	}
	return s
}

func nodeString(n ast.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), n); err != nil {
		return "<" + err.Error() + ">"
	}
	return buf.String()
}
