// Package report presents resolved directive nests and their diagnostics.
package report

import (
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nickng/amdahl/nest"
	"github.com/nickng/amdahl/resolve"
	"github.com/nickng/amdahl/scan"
	"github.com/pkg/errors"
)

var (
	errorColour = color.New(color.FgRed, color.Bold)
	kindColour  = color.New(color.FgCyan, color.Bold)
	fieldColour = color.New(color.Faint)
)

// Key returns the message key of a resolution or directive error.
func Key(err error) string {
	if code, ok := resolve.CodeOf(err); ok {
		return code.Key()
	}
	switch errors.Cause(err) {
	case scan.ErrUnknownDirective:
		return "UnknownDirective"
	case scan.ErrDetachedDirective:
		return "DetachedDirective"
	case scan.ErrConflictingDirectives:
		return "ConflictingDirectives"
	}
	return ""
}

// Pos returns the source position recorded in err, if any.
func Pos(err error) token.Pos {
	var ne *resolve.NestError
	if errors.As(err, &ne) {
		return ne.Pos
	}
	var de *scan.DirectiveError
	if errors.As(err, &de) {
		return de.Pos
	}
	return token.NoPos
}

// Diagnostic writes err as a compiler style diagnostic:
//
//	file.go:3:2: error: <message> [Key]
func Diagnostic(w io.Writer, fset *token.FileSet, err error) {
	if err == nil {
		return
	}
	if pos := Pos(err); pos.IsValid() && fset != nil {
		fmt.Fprintf(w, "%s: ", fset.Position(pos))
	}
	errorColour.Fprint(w, "error:")
	fmt.Fprintf(w, " %s", err)
	if key := Key(err); key != "" {
		fmt.Fprintf(w, " [%s]", key)
	}
	fmt.Fprintln(w)
}

// Text writes a summary of every site. Failed sites are written as
// diagnostics.
func Text(w io.Writer, fset *token.FileSet, sites []*scan.Site) {
	for _, site := range sites {
		if !site.OK() {
			Diagnostic(w, fset, site.Err) // Sites not yet resolved are skipped.
			continue
		}
		res := site.Resolved
		fmt.Fprintf(w, "%s: ", fset.Position(site.Pos()))
		kindColour.Fprintf(w, "%s", res.Kind())
		fmt.Fprint(w, " nest")
		if site.Func != nil {
			fmt.Fprintf(w, " in %s", site.Func.Name.Name)
		}
		fmt.Fprintln(w)

		field(w, "header", res.Header().String())
		if trip, ok := res.TripCount(); ok {
			field(w, "trips", fmt.Sprintf("%d", trip))
		} else {
			field(w, "trips", "dynamic")
		}
		field(w, "levels", strings.Join(levels(res), " | "))
		field(w, "params", strings.Join(params(res.Region), ", "))
		if len(res.Region.Bindings) > 0 {
			field(w, "bindings", strings.Join(bindings(res.Region), ", "))
		}
		if len(res.Region.Captures) > 0 {
			field(w, "captures", strings.Join(captures(res.Region), ", "))
		}
	}
}

func field(w io.Writer, name, value string) {
	fieldColour.Fprintf(w, "    %-9s", name)
	fmt.Fprintln(w, value)
}

func levels(res *resolve.Resolved) []string {
	var s []string
	for _, l := range res.Chain {
		s = append(s, fmt.Sprintf("%s %s", l.Directive, l))
	}
	return s
}

func params(r *nest.Region) []string {
	var s []string
	for _, p := range r.Params {
		s = append(s, p.Name)
	}
	return s
}

func bindings(r *nest.Region) []string {
	var s []string
	for _, b := range r.Bindings {
		s = append(s, b.String())
	}
	return s
}

func captures(r *nest.Region) []string {
	var s []string
	for _, c := range r.Captures {
		s = append(s, c.String())
	}
	return s
}
