package resolve

import (
	"fmt"

	"github.com/nickng/amdahl/nest"
)

// State is the state of resolution of a nest.
type State int

const (
	Scanning   State = iota
	Collapsing       // Collapsing merges a collapse child into the current level.
	Capturing        // Capturing outlines the body at the bottom of the chain.
	Done
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Collapsing:
		return "collapsing"
	case Capturing:
		return "capturing"
	case Done:
		return "resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// A Context is the resolution state of one directive chain. It is passed by
// value down the recursion so every level sees the state of its ancestors
// only.
type Context struct {
	Level    int  // Nesting level of the current loop.
	Master   bool // True iff Level is 0.
	Captured bool // True once the chain has been outlined.
	State    State

	// chain holds the original headers of every level visited, outermost
	// first, stamped with their nesting level.
	chain []*nest.Loop

	// segments groups the chain by dispatching loop: each segment is a loop
	// followed by the collapse loops merged into it.
	segments [][]*nest.Loop
}

// toplevel returns the context at a directive root.
func toplevel(root *nest.Loop) Context {
	return Context{
		Level:    0,
		Master:   true,
		State:    Scanning,
		chain:    []*nest.Loop{root},
		segments: [][]*nest.Loop{{root}},
	}
}

// merge returns the context one level deeper after header was merged into
// the current segment.
func (c Context) merge(header *nest.Loop) Context {
	c.Level++
	c.Master = false
	c.State = Scanning
	c.chain = appendLoop(c.chain, header)
	segs := make([][]*nest.Loop, len(c.segments))
	copy(segs, c.segments)
	segs[len(segs)-1] = appendLoop(segs[len(segs)-1], header)
	c.segments = segs
	return c
}

// enter returns the context one level deeper where header starts a new
// segment.
func (c Context) enter(header *nest.Loop) Context {
	c.Level++
	c.Master = false
	c.State = Scanning
	c.chain = appendLoop(c.chain, header)
	segs := make([][]*nest.Loop, len(c.segments), len(c.segments)+1)
	copy(segs, c.segments)
	c.segments = append(segs, []*nest.Loop{header})
	return c
}

// Chain returns the headers visited so far, outermost first.
func (c Context) Chain() []*nest.Loop { return c.chain }

// collapsed returns the headers that were merged away.
func (c Context) collapsed() []*nest.Loop {
	var loops []*nest.Loop
	for _, seg := range c.segments {
		loops = append(loops, seg[1:]...)
	}
	return loops
}

func appendLoop(loops []*nest.Loop, l *nest.Loop) []*nest.Loop {
	out := make([]*nest.Loop, len(loops), len(loops)+1)
	copy(out, loops)
	return append(out, l)
}
