package resolve

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/nickng/amdahl/nest"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Default names of the implicit parameters of an outlined region.
const (
	DefaultIdentityParam = "amdahl_idx"
	DefaultContextParam  = "amdahl_ctx"
)

// IndexPolicy decides what happens to references to the induction variable of
// a collapsed loop inside the merged body.
type IndexPolicy int

const (
	// IndexRestrict rejects bodies that reference a collapsed induction
	// variable.
	IndexRestrict IndexPolicy = iota
	// IndexIgnore splices the body unchanged. References to collapsed
	// induction variables are left dangling.
	IndexIgnore
	// IndexDecompose recovers each collapsed induction variable from the
	// flattened index with div/mod bindings recorded in the region.
	IndexDecompose
)

func (p IndexPolicy) String() string {
	switch p {
	case IndexRestrict:
		return "restrict"
	case IndexIgnore:
		return "ignore"
	case IndexDecompose:
		return "decompose"
	}
	return fmt.Sprintf("IndexPolicy(%d)", int(p))
}

// ParsePolicy returns the policy named s.
func ParsePolicy(s string) (IndexPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "restrict":
		return IndexRestrict, nil
	case "ignore":
		return IndexIgnore, nil
	case "decompose":
		return IndexDecompose, nil
	}
	return IndexRestrict, errors.Errorf("unknown index policy %q", s)
}

// Resolver resolves directive nests of one function body at a time.
type Resolver struct {
	info     *types.Info // Type information of the source; may be nil.
	identity string
	shared   string
	policy   IndexPolicy

	*Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithParams sets the names of the identity and shared-context parameters.
// Empty names keep the defaults.
func WithParams(identity, shared string) Option {
	return func(r *Resolver) {
		if identity != "" {
			r.identity = identity
		}
		if shared != "" {
			r.shared = shared
		}
	}
}

// WithIndexPolicy sets the collapsed index policy.
func WithIndexPolicy(p IndexPolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithLogger sets the logger of the resolver.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Resolver) { r.Logger = NewLogger(l, "resolve") }
}

// New returns a Resolver using info to analyse captured variables.
func New(info *types.Info, opts ...Option) *Resolver {
	r := &Resolver{
		info:     info,
		identity: DefaultIdentityParam,
		shared:   DefaultContextParam,
		policy:   IndexRestrict,
		Logger:   nopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) SetLogger(l *Logger) {
	if l != nil {
		r.Logger = l
	}
}

// Policy returns the collapsed index policy.
func (r *Resolver) Policy() IndexPolicy { return r.policy }

// Resolve validates and transforms the nest rooted at the directive loop root.
//
// On success the returned node owns a fresh copy of every rewritten header;
// the body at the bottom of the chain is moved into the region. On failure no
// node is returned and root is left as it was. Resolving a nest that is
// already resolved returns it unchanged.
func (r *Resolver) Resolve(root *nest.Loop) (*Resolved, error) {
	if root == nil {
		return nil, malformed(0, "no loop")
	}
	if root.Kind() == nest.Sequential {
		return nil, malformed(root.Pos(), "loop has no directive")
	}
	if region, ok := root.Body.(*nest.Region); ok {
		r.Debugf("%s nest at %d is resolved, nothing to do", r.Module(), root.Pos())
		return r.existing(root, region), nil
	}
	cur := root.Clone()
	cur.Directive = nest.Annotate(root.Directive, 0)
	res, err := r.classify(cur, toplevel(cur.Clone()))
	if err != nil {
		r.Debugf("%s nest at %d abandoned: %v", r.Module(), root.Pos(), err)
		return nil, err
	}
	r.Debugf("%s nest at %d resolved: %s", r.Module(), root.Pos(), res)
	return res, nil
}

// classify dispatches on the immediate child of the directive loop cur.
// cur is owned by the resolution and may be modified.
func (r *Resolver) classify(cur *nest.Loop, ctx Context) (*Resolved, error) {
	if region, ok := cur.Body.(*nest.Region); ok {
		ctx.Captured, ctx.State = true, Done
		return &Resolved{Loop: cur, Dispatch: cur, Region: region, Chain: ctx.chain, State: ctx.State, info: r.info}, nil
	}
	if err := Validate(cur); err != nil {
		return nil, err
	}
	r.Debugf("%s level %d %s: %s", r.Module(), ctx.Level, ctx.State, cur)

	switch child := nest.Unwrap(cur.Body).(type) {
	case nil:
		return nil, malformed(cur.Pos(), "directive loop has an empty body")

	case *nest.Loop:
		switch child.Directive.(type) {
		case nest.CollapseDirective:
			ctx.State = Collapsing
			merged, header, err := r.collapse(cur, child, ctx.Level+1)
			if err != nil {
				return nil, err
			}
			return r.classify(merged, ctx.merge(header))

		case nest.ParallelDirective:
			if cur.Kind() == nest.Parallel {
				return nil, unsupportedNesting(child.Pos(), "%s loop directly contains a parallel loop", cur.Directive)
			}
			inner := child.Clone()
			inner.Directive = nest.Annotate(child.Directive, ctx.Level+1)
			res, err := r.classify(inner, ctx.enter(inner.Clone()))
			if err != nil {
				return nil, err
			}
			cur.Body = res.Loop
			res.Loop = cur
			return res, nil

		case nest.None, nil:
			// An ordinary loop right below a directive is still checked.
			if err := Validate(child); err != nil {
				return nil, err
			}

		default:
			return nil, malformed(child.Pos(), "unknown directive %v", child.Directive)
		}

	case *nest.Region:
		return nil, malformed(child.Pos(), "captured region below the top of the body")
	}

	return r.outline(cur, ctx)
}

// existing rebuilds the description of a resolved nest.
func (r *Resolver) existing(root *nest.Loop, region *nest.Region) *Resolved {
	return &Resolved{
		Loop:     root,
		Dispatch: root,
		Region:   region,
		Chain:    []*nest.Loop{root},
		State:    Done,
		info:     r.info,
	}
}
