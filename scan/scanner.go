package scan

import (
	"go/ast"
	"go/token"

	"github.com/nickng/amdahl/nest"
	"github.com/nickng/amdahl/resolve"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/astutil"
)

// Site is a directive nest found in a source file.
type Site struct {
	Func *ast.FuncDecl // Enclosing function; nil at package level.
	For  *ast.ForStmt  // Root for statement.
	Root *nest.Loop    // Model of the nest rooted at For.

	Resolved *resolve.Resolved // Set once the nest is fully resolved.
	Err      error             // Resolution error, if any.
}

func (s *Site) Pos() token.Pos { return s.For.For }

// OK returns true if the site is resolved.
func (s *Site) OK() bool { return s.Resolved != nil && s.Err == nil }

// Accept records the outcome of resolving the site. The resolved nest is only
// spliced in if err is nil.
func (s *Site) Accept(res *resolve.Resolved, err error) {
	if err != nil {
		s.Resolved, s.Err = nil, err
		return
	}
	s.Resolved, s.Err = res, nil
}

// Scanner finds directive nests in files of one file set.
type Scanner struct {
	prefix string
	fset   *token.FileSet

	kinds   map[*ast.ForStmt]nest.Kind
	claimed map[*ast.ForStmt]bool

	*resolve.Logger
}

// NewScanner returns a scanner for directives with the given prefix.
// An empty prefix is DefaultPrefix.
func NewScanner(fset *token.FileSet, prefix string) *Scanner {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Scanner{
		prefix: prefix,
		fset:   fset,
		Logger: resolve.NewLogger(zap.NewNop().Sugar(), "scan"),
	}
}

func (s *Scanner) SetLogger(l *resolve.Logger) {
	if l != nil {
		s.Logger = l
	}
}

// pending is a directive waiting for its for statement.
type pending struct {
	kind    nest.Kind
	comment *ast.Comment
	used    bool
}

// File returns the directive nests of f in source order. Directive errors are
// combined in the returned error; sites are returned regardless.
func (s *Scanner) File(f *ast.File) ([]*Site, error) {
	s.kinds = make(map[*ast.ForStmt]nest.Kind)
	s.claimed = make(map[*ast.ForStmt]bool)

	var errs error
	directives := make(map[int]*pending) // Keyed by the last line of the comment group.
	var order []*pending
	for _, group := range f.Comments {
		var found *pending
		for _, c := range group.List {
			kind, ok, err := ParseDirective(c.Text, s.prefix)
			if !ok {
				continue
			}
			if err != nil {
				errs = multierr.Append(errs, &DirectiveError{Pos: c.Slash, Text: c.Text, Err: err})
				continue
			}
			if found != nil {
				errs = multierr.Append(errs, &DirectiveError{Pos: c.Slash, Text: c.Text, Err: ErrConflictingDirectives})
				found.used = true // Reported.
				continue
			}
			found = &pending{kind: kind, comment: c}
		}
		if found != nil {
			directives[s.fset.Position(group.End()).Line] = found
			order = append(order, found)
		}
	}

	ast.Inspect(f, func(n ast.Node) bool {
		var pos token.Pos
		switch n := n.(type) {
		case *ast.ForStmt:
			pos = n.For
			if d := directives[s.fset.Position(pos).Line-1]; d != nil && !d.used {
				s.kinds[n] = d.kind
				d.used = true
			}
		case *ast.RangeStmt:
			pos = n.For
			if d := directives[s.fset.Position(pos).Line-1]; d != nil && !d.used {
				errs = multierr.Append(errs, &DirectiveError{Pos: d.comment.Slash, Text: d.comment.Text, Err: ErrDetachedDirective})
				d.used = true
			}
		}
		return true
	})
	for _, d := range order {
		if !d.used {
			errs = multierr.Append(errs, &DirectiveError{Pos: d.comment.Slash, Text: d.comment.Text, Err: ErrDetachedDirective})
		}
	}

	var sites []*Site
	ast.Inspect(f, func(n ast.Node) bool {
		fs, ok := n.(*ast.ForStmt)
		if !ok {
			return true
		}
		if _, directive := s.kinds[fs]; directive && !s.claimed[fs] {
			s.claimed[fs] = true
			site := &Site{Func: enclosingFunc(f, fs), For: fs, Root: s.loop(fs)}
			s.Debugf("%s %s nest at %s", s.Module(), site.Root.Kind(), s.fset.Position(fs.For))
			sites = append(sites, site)
		}
		return true
	})
	return sites, errs
}

// loop converts a for statement. The immediate child of a directive loop is
// part of the nest: a directive child continues the chain, an ordinary child
// loop is modelled but its body is opaque.
func (s *Scanner) loop(fs *ast.ForStmt) *nest.Loop {
	kind := s.kinds[fs]
	l := &nest.Loop{
		For:       fs.For,
		Init:      fs.Init,
		Cond:      fs.Cond,
		Post:      fs.Post,
		Var:       inductionVar(fs),
		Directive: nest.NewDirective(kind),
		Source:    fs,
	}
	if kind == nest.Sequential {
		l.Body = plainBlock(fs.Body)
		return l
	}
	if len(fs.Body.List) == 1 {
		if child, ok := fs.Body.List[0].(*ast.ForStmt); ok {
			if _, directive := s.kinds[child]; directive {
				s.claimed[child] = true
			}
			l.Body = &nest.Block{
				Lbrace: fs.Body.Lbrace,
				Rbrace: fs.Body.Rbrace,
				List:   []nest.Stmt{s.loop(child)},
			}
			return l
		}
	}
	l.Body = plainBlock(fs.Body)
	return l
}

// enclosingFunc returns the function declaration containing n, or nil if n is
// in a package-level function literal.
func enclosingFunc(f *ast.File, n ast.Node) *ast.FuncDecl {
	path, _ := astutil.PathEnclosingInterval(f, n.Pos(), n.End())
	for _, node := range path {
		if fn, ok := node.(*ast.FuncDecl); ok {
			return fn
		}
	}
	return nil
}

func plainBlock(b *ast.BlockStmt) *nest.Block {
	block := &nest.Block{Lbrace: b.Lbrace, Rbrace: b.Rbrace}
	for _, stmt := range b.List {
		block.List = append(block.List, &nest.Plain{Stmt: stmt})
	}
	return block
}

// inductionVar guesses the induction variable from the increment, then the
// condition, then the initialiser.
func inductionVar(fs *ast.ForStmt) *ast.Ident {
	switch post := fs.Post.(type) {
	case *ast.IncDecStmt:
		if id, ok := astutil.Unparen(post.X).(*ast.Ident); ok {
			return id
		}
	case *ast.AssignStmt:
		if len(post.Lhs) == 1 {
			if id, ok := astutil.Unparen(post.Lhs[0]).(*ast.Ident); ok {
				return id
			}
		}
	}
	if cond, ok := astutil.Unparen(fs.Cond).(*ast.BinaryExpr); ok {
		if id, ok := astutil.Unparen(cond.X).(*ast.Ident); ok {
			return id
		}
	}
	if init, ok := fs.Init.(*ast.AssignStmt); ok && len(init.Lhs) == 1 {
		if id, ok := init.Lhs[0].(*ast.Ident); ok {
			return id
		}
	}
	return nil
}
