package build

import (
	"go/build"
	"go/parser"
	"io"
	"io/ioutil"
	"log"

	"github.com/nickng/amdahl/source"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/loader"
)

// srcReader is a wrapper for source code which can be read through a NewReader.
type srcReader interface {
	NewReader() io.Reader
}

type Configurer interface {
	Builder
	Default() Configurer
	AllowTypeErrors() Configurer
	WithBuildLog(l io.Writer, flags int) Configurer
}

// Config represents a build configuration.
type Config struct {
	parserMode  parser.Mode
	allowErrors bool

	bldLog    io.Writer // Build log.
	bldLFlags int       // Build log flags.

	src srcReader // src points to the program source.
}

func newConfig(src srcReader) *Config {
	return &Config{
		parserMode: parser.ParseComments,
		bldLog:     ioutil.Discard,
		bldLFlags:  log.LstdFlags,
		src:        src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer, flags int) Configurer {
	c.bldLog = l
	c.bldLFlags = flags
	return c
}

// AllowTypeErrors keeps going when the package has type errors. Errors are
// written to the build log instead.
func (c *Config) AllowTypeErrors() Configurer {
	c.allowErrors = true
	return c
}

func (c *Config) Build() (*source.Info, error) {
	var lconf = loader.Config{
		Build:       &build.Default,
		ParserMode:  c.parserMode,
		AllowErrors: c.allowErrors,
	}
	bldLog := log.New(c.bldLog, "srcbuild: ", c.bldLFlags)
	if c.allowErrors {
		lconf.TypeChecker.Error = func(err error) { bldLog.Print(err) }
	}

	switch src := c.src.(type) {
	case *FileSrc:
		if len(src.Files) == 0 {
			return nil, errors.New("no source files")
		}
		lconf.CreateFromFilenames("", src.Files...)
	case *CachedSrc:
		if src.err != nil {
			return nil, src.err
		}
		parsed, err := lconf.ParseFile("tmp.go", src.cached)
		if err != nil {
			return nil, errors.Wrap(err, "parse failed")
		}
		lconf.CreateFromFiles("", parsed)
	default:
		return nil, errors.Errorf("unknown source type %T", src)
	}

	// Load, parse and type-check program
	lprog, err := lconf.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	if len(lprog.Created) == 0 {
		return nil, errors.New("no package created")
	}
	pkg := lprog.Created[0]
	bldLog.Printf("Package %s loaded and type checked (%d files)", pkg.Pkg.Name(), len(pkg.Files))

	return &source.Info{
		FSet:   lprog.Fset,
		Files:  pkg.Files,
		Pkg:    pkg.Pkg,
		Types:  &pkg.Info,
		LProg:  lprog,
		BldLog: c.bldLog,
	}, nil
}

// Default returns a default configuration for directive resolution:
// comments are kept and all syntax errors are reported.
func (c *Config) Default() Configurer {
	c.parserMode |= parser.ParseComments | parser.AllErrors
	return c
}
