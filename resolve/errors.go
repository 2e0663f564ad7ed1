package resolve

import (
	"fmt"
	"go/token"

	"github.com/pkg/errors"
)

var (
	ErrInvalidComparator  = errors.New("the comparison operator for a parallel or collapse loop must be <, >, <=, or >=")
	ErrUnsupportedNesting = errors.New("parallel nesting within parallel is not supported")
	ErrMalformedNest      = errors.New("malformed directive nest")
)

// Code classifies a resolution failure. All failures are fatal for the nest.
type Code int

const (
	InvalidComparator Code = iota
	UnsupportedNesting
	MalformedNest
)

// Key returns the diagnostic message key of the code.
func (c Code) Key() string {
	switch c {
	case InvalidComparator:
		return "InvalidComparator"
	case UnsupportedNesting:
		return "UnsupportedNesting"
	case MalformedNest:
		return "MalformedNest"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Err returns the sentinel error of the code.
func (c Code) Err() error {
	switch c {
	case InvalidComparator:
		return ErrInvalidComparator
	case UnsupportedNesting:
		return ErrUnsupportedNesting
	}
	return ErrMalformedNest
}

func (c Code) String() string { return c.Key() }

// NestError is a resolution failure at a source position.
type NestError struct {
	Code   Code
	Pos    token.Pos
	Detail string
}

func (e *NestError) Error() string {
	if e.Detail == "" {
		return e.Code.Err().Error()
	}
	return fmt.Sprintf("%s: %s", e.Code.Err().Error(), e.Detail)
}

// Unwrap returns the sentinel for errors.Is.
func (e *NestError) Unwrap() error { return e.Code.Err() }

// Cause returns the sentinel for errors.Cause.
func (e *NestError) Cause() error { return e.Code.Err() }

func invalidComparator(pos token.Pos, format string, args ...interface{}) error {
	return &NestError{Code: InvalidComparator, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

func unsupportedNesting(pos token.Pos, format string, args ...interface{}) error {
	return &NestError{Code: UnsupportedNesting, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

func malformed(pos token.Pos, format string, args ...interface{}) error {
	return &NestError{Code: MalformedNest, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of a resolution error wrapped anywhere in err.
func CodeOf(err error) (Code, bool) {
	var ne *NestError
	if errors.As(err, &ne) {
		return ne.Code, true
	}
	return 0, false
}
