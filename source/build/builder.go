package build

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"

	"github.com/nickng/amdahl/source"
	"github.com/pkg/errors"
)

// Builder builds type-checked source and metainfo.
type Builder interface {
	Build() (*source.Info, error)
}

// FileSrc is a set of filenames.
type FileSrc struct {
	Files []string
}

// FromFiles returns a non-nil Builder from a slice of filenames.
func FromFiles(files []string) Configurer {
	return newConfig(&FileSrc{Files: files})
}

// ReadFile returns the content of file[i].
func (s *FileSrc) ReadFile(i int) ([]byte, error) {
	if i >= len(s.Files) {
		return nil, errors.Errorf("no file at index %d", i)
	}
	b, err := os.ReadFile(s.Files[i])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read from file: %s", s.Files[i])
	}
	return b, nil
}

// NewReader returns an io.Reader for reading all files.
func (s *FileSrc) NewReader() io.Reader {
	var rds []io.Reader
	for i := range s.Files {
		if b, err := s.ReadFile(i); err == nil {
			rds = append(rds, bytes.NewReader(b))
		}
	}
	return io.MultiReader(rds...)
}

// CachedSrc is source file from a reader.
type CachedSrc struct {
	cached []byte
	err    error
}

// FromReader returns a non-nil Builder for a reader.
// This is typically used for testing or building a temporary file.
// A read error is reported by Build.
func FromReader(r io.Reader) Configurer {
	b, err := ioutil.ReadAll(r)
	return newConfig(&CachedSrc{cached: b, err: errors.Wrap(err, "failed to read from reader")})
}

// NewReader returns a reader for reading the string content.
func (s *CachedSrc) NewReader() io.Reader {
	return bytes.NewReader(s.cached)
}
