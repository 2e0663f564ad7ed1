package scan

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/nickng/amdahl/nest"
	"github.com/pkg/errors"
)

// DefaultPrefix is the directive prefix, without the leading "//".
const DefaultPrefix = "amdahl:"

var (
	ErrUnknownDirective      = errors.New("unknown directive")
	ErrDetachedDirective     = errors.New("directive is not attached to a counted for statement")
	ErrConflictingDirectives = errors.New("conflicting directives")
)

// DirectiveError is a malformed or misplaced directive.
type DirectiveError struct {
	Pos  token.Pos
	Text string // Comment text.
	Err  error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Text)
}

func (e *DirectiveError) Unwrap() error { return e.Err }
func (e *DirectiveError) Cause() error  { return e.Err }

// ParseDirective parses the text of a comment, including the comment marker.
// ok is false if the comment is not a directive. A comment with the prefix but
// an unsupported kind returns ErrUnknownDirective.
func ParseDirective(text, prefix string) (kind nest.Kind, ok bool, err error) {
	if !strings.HasPrefix(text, "//") {
		return nest.Sequential, false, nil
	}
	text = strings.TrimPrefix(text, "//")
	if !strings.HasPrefix(text, prefix) {
		return nest.Sequential, false, nil
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) != 1 {
		return nest.Sequential, true, ErrUnknownDirective
	}
	switch fields[0] {
	case "parallel":
		return nest.Parallel, true, nil
	case "collapse":
		return nest.Collapse, true, nil
	}
	return nest.Sequential, true, ErrUnknownDirective
}
