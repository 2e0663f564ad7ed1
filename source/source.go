// Package source holds parsed and type-checked Go source for directive
// resolution.
//
// For most part the package wraps the results of golang.org/x/tools/go/loader
// so that the rest of the analysis works on syntax trees with comments and
// complete type information.
//
package source

import (
	"go/ast"
	"go/token"
	"go/types"
	"io"

	"golang.org/x/tools/go/loader"
)

// Info holds the results of a source build for analysis.
// To populate this structure, the 'build' subpackage should be used.
//
type Info struct {
	FSet  *token.FileSet  // FileSet for parsed source files.
	Files []*ast.File     // Parsed files of the package being analysed.
	Pkg   *types.Package  // Type-checked package.
	Types *types.Info     // Type information of Files.
	LProg *loader.Program // Loaded program from go/loader.

	BldLog io.Writer // Build log.
}

// Position returns the source position of pos.
func (info *Info) Position(pos token.Pos) token.Position {
	return info.FSet.Position(pos)
}

// FuncDecl returns the declaration of the package-level function (or method)
// called name, or nil if there is none.
func (info *Info) FuncDecl(name string) *ast.FuncDecl {
	for _, f := range info.Files {
		for _, decl := range f.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == name {
				return fn
			}
		}
	}
	return nil
}

// FuncDecls returns all function declarations with a body in source order.
func (info *Info) FuncDecls() []*ast.FuncDecl {
	var fns []*ast.FuncDecl
	for _, f := range info.Files {
		for _, decl := range f.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok && fn.Body != nil {
				fns = append(fns, fn)
			}
		}
	}
	return fns
}
