package nest

import "fmt"

// Kind is the kind of a directive-bearing loop.
type Kind int

const (
	Sequential Kind = iota // Sequential is an ordinary loop without directive.
	Parallel
	Collapse
)

func (k Kind) String() string {
	switch k {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	case Collapse:
		return "collapse"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Directive is the annotation attached to a Loop.
// It is one of None, ParallelDirective or CollapseDirective.
type Directive interface {
	Kind() Kind
	Level() int // Number of directive-bearing ancestors.
	directive()
}

// None is the annotation of a loop without directive.
type None struct{}

// ParallelDirective marks a loop whose iterations run concurrently.
// IsMaster is true iff NestLevel is 0.
type ParallelDirective struct {
	NestLevel int
	IsMaster  bool
}

// CollapseDirective marks a loop whose iteration space is merged into its
// immediate parent's.
type CollapseDirective struct {
	NestLevel int
}

func (None) Kind() Kind              { return Sequential }
func (ParallelDirective) Kind() Kind { return Parallel }
func (CollapseDirective) Kind() Kind { return Collapse }

func (None) Level() int                { return -1 }
func (d ParallelDirective) Level() int { return d.NestLevel }
func (d CollapseDirective) Level() int { return d.NestLevel }

func (None) directive()              {}
func (ParallelDirective) directive() {}
func (CollapseDirective) directive() {}

func (None) String() string { return "none" }

func (d ParallelDirective) String() string {
	if d.IsMaster {
		return fmt.Sprintf("parallel@%d(master)", d.NestLevel)
	}
	return fmt.Sprintf("parallel@%d", d.NestLevel)
}

func (d CollapseDirective) String() string {
	return fmt.Sprintf("collapse@%d", d.NestLevel)
}

// NewDirective returns the directive of kind k at nesting level 0.
func NewDirective(k Kind) Directive {
	switch k {
	case Parallel:
		return ParallelDirective{IsMaster: true}
	case Collapse:
		return CollapseDirective{}
	}
	return None{}
}

// Annotate returns d stamped with the nesting level.
// A nil Directive is treated as None.
func Annotate(d Directive, level int) Directive {
	switch d.(type) {
	case ParallelDirective:
		return ParallelDirective{NestLevel: level, IsMaster: level == 0}
	case CollapseDirective:
		return CollapseDirective{NestLevel: level}
	}
	return None{}
}

// KindOf returns the kind of d, treating nil as Sequential.
func KindOf(d Directive) Kind {
	if d == nil {
		return Sequential
	}
	return d.Kind()
}
