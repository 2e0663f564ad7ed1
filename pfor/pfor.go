// Package pfor finds and resolves parallel for directives in a type-checked
// package.
package pfor

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/nickng/amdahl/pfor/internal/forkjoin"
	"github.com/nickng/amdahl/report"
	"github.com/nickng/amdahl/resolve"
	"github.com/nickng/amdahl/scan"
	"github.com/nickng/amdahl/source"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DefaultWorkers is the default number of workers of a dispatch.
const DefaultWorkers = 4

// Analyser is the main entry point of directive resolution.
type Analyser struct {
	Info  *source.Info  // Loaded source.
	Sites []*scan.Site  // Nests found by the last Analyse.
	Model *forkjoin.Model

	prefix  string
	workers int
	opts    []resolve.Option
	err     error

	outWriter io.Writer // Output stream.
	errWriter io.Writer // Error stream.
	*resolve.Logger
}

// New returns a new Analyser, and uses w for diagnostics.
func New(info *source.Info, w io.Writer) *Analyser {
	a := Analyser{
		Info:      info,
		prefix:    scan.DefaultPrefix,
		workers:   DefaultWorkers,
		outWriter: ioutil.Discard,
		errWriter: ioutil.Discard,
		Logger:    newLogger(),
	}
	if w != nil {
		a.errWriter = w
	}
	return &a
}

func (a *Analyser) SetOutput(w io.Writer) {
	if w != nil {
		a.outWriter = w
	}
}

// SetLog replaces the logger by one built from opts. The current logger is
// kept if opts are invalid.
func (a *Analyser) SetLog(opts LogOptions) error {
	l, err := buildLogger(opts)
	if err != nil {
		return err
	}
	a.Logger = l
	return nil
}

// SetPrefix sets the directive prefix.
func (a *Analyser) SetPrefix(prefix string) {
	if prefix != "" {
		a.prefix = prefix
	}
}

// SetWorkers sets the number of workers of a dispatch.
func (a *Analyser) SetWorkers(n int) {
	if n > 0 {
		a.workers = n
	}
}

// SetResolver sets the options of the resolver used by Analyse.
func (a *Analyser) SetResolver(opts ...resolve.Option) {
	a.opts = opts
}

// Analyse scans every file of the package and resolves each nest found.
// Nests are independent: a failed nest does not stop the others. The returned
// error combines every failure.
func (a *Analyser) Analyse() ([]*scan.Site, error) {
	// Sync error ignored. See https://github.com/uber-go/zap/issues/328
	defer a.Logger.Sync()

	a.Sites, a.err = nil, nil
	a.Model = forkjoin.New(a.workers, resolve.NewLogger(a.SugaredLogger, "forkjoin"))

	scanner := scan.NewScanner(a.Info.FSet, a.prefix)
	scanner.SetLogger(resolve.NewLogger(a.SugaredLogger, "scan"))
	resolver := resolve.New(a.Info.Types, a.opts...)
	resolver.SetLogger(resolve.NewLogger(a.SugaredLogger, "resolve"))

	nests := 0
	for _, f := range a.Info.Files {
		sites, err := scanner.File(f)
		for _, e := range multierr.Errors(err) {
			report.Diagnostic(a.errWriter, a.Info.FSet, e)
			a.err = multierr.Append(a.err, e)
		}
		for _, site := range sites {
			nests++
			res, err := resolver.Resolve(site.Root)
			site.Accept(res, err)
			if err != nil {
				report.Diagnostic(a.errWriter, a.Info.FSet, err)
				a.err = multierr.Append(a.err, errors.WithMessage(err, a.Info.Position(site.Pos()).String()))
				continue
			}
			a.Model.Add(a.funcName(site, nests-1), res)
		}
		a.Sites = append(a.Sites, sites...)
	}
	a.Debugf("%s %d nests, %d failed", a.Module(), len(a.Sites), len(multierr.Errors(a.err)))
	return a.Sites, a.err
}

// Err returns the combined errors of the last Analyse.
func (a *Analyser) Err() error { return a.err }

// Failed returns the number of nests that could not be resolved.
func (a *Analyser) Failed() int {
	n := 0
	for _, site := range a.Sites {
		if !site.OK() {
			n++
		}
	}
	return n
}

// WriteReport writes the text report of the last Analyse to the output.
func (a *Analyser) WriteReport() {
	report.Text(a.outWriter, a.Info.FSet, a.Sites)
}

// WriteYAML writes the YAML report of the last Analyse to the output.
func (a *Analyser) WriteYAML() error {
	return report.YAML(a.outWriter, a.Info.FSet, a.Sites)
}

// WriteMiGo writes the fork/join model of the last Analyse to the output.
func (a *Analyser) WriteMiGo() {
	if a.Model != nil {
		fmt.Fprint(a.outWriter, a.Model.String())
	}
}

// funcName names the MiGo function of the i-th nest.
func (a *Analyser) funcName(site *scan.Site, i int) string {
	pkg := "main"
	if a.Info.Pkg != nil {
		pkg = a.Info.Pkg.Name()
	}
	if site.Func == nil {
		return fmt.Sprintf("%s.init#%d", pkg, i)
	}
	return fmt.Sprintf("%s.%s#%d", pkg, site.Func.Name.Name, i)
}
