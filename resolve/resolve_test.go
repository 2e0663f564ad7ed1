package resolve_test

import (
	"go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nickng/amdahl/nest"
	"github.com/nickng/amdahl/resolve"
	"github.com/nickng/amdahl/scan"
	"github.com/nickng/amdahl/source/build"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// nests builds src and returns its directive nests with a resolver for them.
func nests(t *testing.T, src string, opts ...resolve.Option) ([]*nest.Loop, *resolve.Resolver) {
	t.Helper()
	info, err := build.FromReader(strings.NewReader(src)).Default().Build()
	require.NoError(t, err, "cannot build source")
	sites, err := scan.NewScanner(info.FSet, "").File(info.Files[0])
	require.NoError(t, err, "cannot scan source")
	require.NotEmpty(t, sites, "no directive nests in source")
	var loops []*nest.Loop
	for _, site := range sites {
		loops = append(loops, site.Root)
	}
	return loops, resolve.New(info.Types, opts...)
}

// regions counts the captured regions reachable from l.
func regions(l *nest.Loop) int {
	n := 0
	for _, l := range nest.Loops(l) {
		if l.Resolved() {
			n++
		}
	}
	return n
}

func directives(res *resolve.Resolved) []string {
	var s []string
	for _, l := range res.Chain {
		s = append(s, l.Directive.(interface{ String() string }).String())
	}
	return s
}

const collapse3 = `package main
func main() {
	var a [24]int
	n := 0
	//amdahl:parallel
	for i := 0; i < 4; i++ {
		//amdahl:collapse
		for j := 0; j < 3; j++ {
			//amdahl:collapse
			for k := 0; k < 2; k++ {
				a[n] += 1
			}
		}
	}
}`

func TestCollapseProduct(t *testing.T) {
	loops, r := nests(t, collapse3)
	res, err := r.Resolve(loops[0])
	require.NoError(t, err)

	if expect, got := nest.Parallel, res.Kind(); expect != got {
		t.Errorf("expected %s nest but got %s", expect, got)
	}
	if expect, got := "4 * 3 * 2", types.ExprString(res.Bound()); expect != got {
		t.Errorf("expected combined bound %q but got %q", expect, got)
	}
	if expect, got := "i", res.Var().Name; expect != got {
		t.Errorf("expected induction variable %s but got %s", expect, got)
	}
	if n, ok := res.TripCount(); !ok || n != 24 {
		t.Errorf("expected 24 iterations but got %d (ok=%t)", n, ok)
	}
	if expect, got := "i = 0; (i<24); i = i + 1", res.Header().String(); expect != got {
		t.Errorf("expected header %q but got %q", expect, got)
	}
	if diff := cmp.Diff([]string{"parallel@0(master)", "collapse@1", "collapse@2"}, directives(res)); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	if expect, got := 1, regions(res.Loop); expect != got {
		t.Errorf("expected %d captured region but got %d", expect, got)
	}
	if expect, got := resolve.Done, res.State; expect != got {
		t.Errorf("expected state %s but got %s", expect, got)
	}
	params := res.Region.Params
	require.Len(t, params, 2)
	if params[0].Kind != nest.IdentityParam || params[0].Name != resolve.DefaultIdentityParam {
		t.Errorf("expected identity parameter first, got %+v", params[0])
	}
	if params[1].Kind != nest.ContextParam || params[1].Name != resolve.DefaultContextParam {
		t.Errorf("expected context parameter second, got %+v", params[1])
	}
	if expect, got := 0, res.Region.NestLevel; expect != got {
		t.Errorf("expected region at level %d but got %d", expect, got)
	}
}

func TestInvalidComparator(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Outer", `//amdahl:parallel
			for i := 0; i != 4; i++ {
				_ = i
			}`},
		{"Collapsed", `//amdahl:parallel
			for i := 0; i < 4; i++ {
				//amdahl:collapse
				for j := 0; j != 3; j++ {
					_ = i
				}
			}`},
		{"Ordinary child", `//amdahl:parallel
			for i := 0; i < 4; i++ {
				for j := 0; j != 3; j++ {
				}
			}`},
		{"No condition", `//amdahl:parallel
			for i := 0; ; i++ {
				if i > 4 {
					break
				}
			}`},
		{"Not a comparison", `//amdahl:parallel
			for i := 0; ok(i); i++ {
				_ = i
			}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			loops, r := nests(t, "package main\nfunc ok(i int) bool { return i < 4 }\nfunc main() {\n"+test.body+"\n}")
			res, err := r.Resolve(loops[0])
			if res != nil {
				t.Errorf("expected no result on failure, got %s", res)
			}
			if !errors.Is(err, resolve.ErrInvalidComparator) {
				t.Fatalf("expected invalid comparator but got %v", err)
			}
			if code, ok := resolve.CodeOf(err); !ok || code.Key() != "InvalidComparator" {
				t.Errorf("expected InvalidComparator key, got %v", code)
			}
			if errors.Cause(err) != resolve.ErrInvalidComparator {
				t.Errorf("expected cause to be the sentinel, got %v", errors.Cause(err))
			}
		})
	}
}

func TestUnsupportedNesting(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"ParallelInParallel", `//amdahl:parallel
			for i := 0; i < 4; i++ {
				//amdahl:parallel
				for j := 0; j < 3; j++ {
					_ = j
				}
			}`},
		{"ParallelInCollapsedParallel", `//amdahl:parallel
			for i := 0; i < 4; i++ {
				//amdahl:collapse
				for j := 0; j < 3; j++ {
					//amdahl:parallel
					for k := 0; k < 2; k++ {
						_ = k
					}
				}
			}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			loops, r := nests(t, "package main\nfunc main() {\n"+test.body+"\n}")
			_, err := r.Resolve(loops[0])
			if !errors.Is(err, resolve.ErrUnsupportedNesting) {
				t.Fatalf("expected unsupported nesting but got %v", err)
			}
			if expect, got := resolve.ErrUnsupportedNesting.Error(), err.Error(); !strings.HasPrefix(got, expect) {
				t.Errorf("expected message to start with %q, got %q", expect, got)
			}
		})
	}
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"EmptyBody", `//amdahl:parallel
			for i := 0; i < 4; i++ {
			}`},
		{"CollapsedIndexUsed", `var a [12]int
			//amdahl:parallel
			for i := 0; i < 4; i++ {
				//amdahl:collapse
				for j := 0; j < 3; j++ {
					a[j] = 1
				}
			}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			loops, r := nests(t, "package main\nfunc main() {\n"+test.body+"\n}")
			_, err := r.Resolve(loops[0])
			if !errors.Is(err, resolve.ErrMalformedNest) {
				t.Fatalf("expected malformed nest but got %v", err)
			}
		})
	}

	r := resolve.New(nil)
	if _, err := r.Resolve(nil); !errors.Is(err, resolve.ErrMalformedNest) {
		t.Errorf("expected malformed nest for nil root but got %v", err)
	}
	if _, err := r.Resolve(&nest.Loop{Directive: nest.None{}}); !errors.Is(err, resolve.ErrMalformedNest) {
		t.Errorf("expected malformed nest for loop without directive but got %v", err)
	}
}

func TestAtomicFailure(t *testing.T) {
	src := `package main
	func main() {
		var a [12]int
		//amdahl:parallel
		for i := 0; i < 4; i++ {
			//amdahl:collapse
			for j := 0; j < 3; j++ {
				a[j] = i
			}
		}
	}`
	loops, r := nests(t, src)
	root := loops[0]
	body, cond, directive := root.Body, root.Cond, root.Directive
	inner := nest.Unwrap(root.Body).(*nest.Loop)
	innerBody, innerCond := inner.Body, inner.Cond
	header := root.String()

	if _, err := r.Resolve(root); err == nil {
		t.Fatal("expected resolution to fail")
	}
	if root.Body != body || root.Cond != cond || root.Directive != directive || root.String() != header {
		t.Errorf("root was modified by a failed resolution: %s", root)
	}
	if inner.Body != innerBody || inner.Cond != innerCond {
		t.Errorf("collapsed loop was modified by a failed resolution: %s", inner)
	}
	if root.Resolved() || inner.Resolved() {
		t.Error("failed resolution left a captured region behind")
	}
}

func TestSuccessLeavesInput(t *testing.T) {
	loops, r := nests(t, collapse3)
	root := loops[0]
	cond := root.Cond
	res, err := r.Resolve(root)
	require.NoError(t, err)
	if root.Cond != cond || root.Resolved() {
		t.Errorf("input nest was modified: %s", root)
	}
	if res.Loop == root {
		t.Error("resolved nest should own a fresh header")
	}
}

func TestIdempotent(t *testing.T) {
	loops, r := nests(t, collapse3)
	res, err := r.Resolve(loops[0])
	require.NoError(t, err)
	again, err := r.Resolve(res.Loop)
	require.NoError(t, err)
	if again.Region != res.Region {
		t.Error("re-resolving created a new region")
	}
	if again.Loop != res.Loop {
		t.Error("re-resolving rewrote the header")
	}
	if expect, got := 1, regions(again.Loop); expect != got {
		t.Errorf("expected %d captured region but got %d", expect, got)
	}
}

func TestCollapseRoot(t *testing.T) {
	t.Run("Sequential", func(t *testing.T) {
		loops, r := nests(t, `package main
		func main() {
			var a [12]int
			//amdahl:collapse
			for i := 0; i < 4; i++ {
				//amdahl:collapse
				for j := 0; j < 3; j++ {
					a[0]++
				}
			}
		}`)
		res, err := r.Resolve(loops[0])
		require.NoError(t, err)
		if expect, got := nest.Collapse, res.Kind(); expect != got {
			t.Errorf("expected %s nest but got %s", expect, got)
		}
		if n, ok := res.TripCount(); !ok || n != 12 {
			t.Errorf("expected 12 iterations but got %d (ok=%t)", n, ok)
		}
		if expect, got := 1, regions(res.Loop); expect != got {
			t.Errorf("expected %d captured region but got %d", expect, got)
		}
	})

	t.Run("ParallelChild", func(t *testing.T) {
		loops, r := nests(t, `package main
		func main() {
			var a [32]int
			//amdahl:collapse
			for i := 0; i < 4; i++ {
				//amdahl:parallel
				for j := 0; j < 8; j++ {
					a[i*8+j] = 1
				}
			}
		}`)
		res, err := r.Resolve(loops[0])
		require.NoError(t, err)
		if expect, got := nest.Collapse, res.Kind(); expect != got {
			t.Errorf("expected %s root but got %s", expect, got)
		}
		if expect, got := nest.Parallel, res.Dispatch.Kind(); expect != got {
			t.Errorf("expected %s dispatch but got %s", expect, got)
		}
		if expect, got := "j", res.Var().Name; expect != got {
			t.Errorf("expected dispatch over %s but got %s", expect, got)
		}
		if n, ok := res.TripCount(); !ok || n != 8 {
			t.Errorf("expected 8 iterations but got %d (ok=%t)", n, ok)
		}
		if res.Loop.Body != res.Dispatch {
			t.Error("dispatching loop should be the body of the root")
		}
		if expect, got := 1, res.Region.NestLevel; expect != got {
			t.Errorf("expected region at level %d but got %d", expect, got)
		}
		if diff := cmp.Diff([]string{"collapse@0", "parallel@1"}, directives(res)); diff != "" {
			t.Errorf("chain mismatch (-want +got):\n%s", diff)
		}
		if expect, got := 1, regions(res.Loop); expect != got {
			t.Errorf("expected %d captured region but got %d", expect, got)
		}
	})
}

func TestIndexPolicy(t *testing.T) {
	src := `package main
	func main() {
		var a [24]int
		//amdahl:parallel
		for i := 0; i < 4; i++ {
			//amdahl:collapse
			for j := 0; j < 3; j++ {
				//amdahl:collapse
				for k := 0; k < 2; k++ {
					a[(i*3+j)*2+k] = 1
				}
			}
		}
	}`
	t.Run("Restrict", func(t *testing.T) {
		loops, r := nests(t, src)
		_, err := r.Resolve(loops[0])
		if !errors.Is(err, resolve.ErrMalformedNest) {
			t.Fatalf("expected malformed nest but got %v", err)
		}
		if !strings.Contains(err.Error(), "j") {
			t.Errorf("expected error to name j, got %v", err)
		}
	})
	t.Run("Ignore", func(t *testing.T) {
		loops, r := nests(t, src, resolve.WithIndexPolicy(resolve.IndexIgnore))
		res, err := r.Resolve(loops[0])
		require.NoError(t, err)
		if len(res.Region.Bindings) != 0 {
			t.Errorf("expected no bindings but got %v", res.Region.Bindings)
		}
		if c := res.Region.Capture("j"); c != nil {
			t.Errorf("collapsed induction variable should not be captured, got %s", c)
		}
	})
	t.Run("Decompose", func(t *testing.T) {
		loops, r := nests(t, src, resolve.WithIndexPolicy(resolve.IndexDecompose), resolve.WithParams("idx", "ctx"))
		res, err := r.Resolve(loops[0])
		require.NoError(t, err)
		var got []string
		for _, b := range res.Region.Bindings {
			got = append(got, b.String())
		}
		expect := []string{"i = idx / (3 * 2)", "j = idx / 2 % 3", "k = idx % 2"}
		if diff := cmp.Diff(expect, got); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
		if expect, got := "idx", res.Region.Params[0].Name; expect != got {
			t.Errorf("expected identity parameter %s but got %s", expect, got)
		}
	})
	t.Run("DecomposeSegments", func(t *testing.T) {
		loops, r := nests(t, `package main
		func main() {
			var a [120]int
			//amdahl:collapse
			for i := 0; i < 2; i++ {
				//amdahl:collapse
				for j := 0; j < 3; j++ {
					//amdahl:parallel
					for k := 0; k < 4; k++ {
						//amdahl:collapse
						for l := 0; l < 5; l++ {
							a[((i*3+j)*4+k)*5+l] = 1
						}
					}
				}
			}
		}`, resolve.WithIndexPolicy(resolve.IndexDecompose))
		res, err := r.Resolve(loops[0])
		require.NoError(t, err)
		var got []string
		for _, b := range res.Region.Bindings {
			got = append(got, b.String())
		}
		expect := []string{"i = i / 3", "j = i % 3", "k = amdahl_idx / 5", "l = amdahl_idx % 5"}
		if diff := cmp.Diff(expect, got); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
		if expect, got := "2 * 3", types.ExprString(res.Loop.Bound()); expect != got {
			t.Errorf("expected root bound %q but got %q", expect, got)
		}
		if expect, got := "4 * 5", types.ExprString(res.Bound()); expect != got {
			t.Errorf("expected dispatch bound %q but got %q", expect, got)
		}
	})
}

func TestCaptures(t *testing.T) {
	src := `package main
	type point struct{ x, y int }
	type counter struct{ n int }
	func (c *counter) inc() { c.n++ }
	var global int
	func inc(p *int) { *p++ }
	func main() {
		n := 1
		total := 0
		var p point
		var arr [3]int
		s := 0
		c := 0
		var cnt counter
		ptr := &total
		//amdahl:parallel
		for i := 0; i < 4; i++ {
			x := n + i
			total += x
			_ = p.x
			_ = arr[0]
			inc(&s)
			c++
			cnt.inc()
			*ptr = global
		}
		_, _, _ = total, s, c
	}`
	loops, r := nests(t, src)
	res, err := r.Resolve(loops[0])
	require.NoError(t, err)

	type capture struct{ Name, Mode, Reason string }
	var got []capture
	for _, c := range res.Captures() {
		got = append(got, capture{c.Name(), c.Mode.String(), c.Reason})
	}
	expect := []capture{
		{"n", "value", ""},
		{"total", "ref", "mutated"},
		{"p", "ref", "aggregate"},
		{"arr", "ref", "aggregate"},
		{"s", "ref", "address taken"},
		{"c", "ref", "mutated"},
		{"cnt", "ref", "address taken"},
		{"ptr", "value", ""},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("captures mismatch (-want +got):\n%s", diff)
	}
}

func TestCapturesWithoutTypes(t *testing.T) {
	loops, _ := nests(t, collapse3)
	r := resolve.New(nil)
	res, err := r.Resolve(loops[0])
	require.NoError(t, err)
	if len(res.Captures()) != 0 {
		t.Errorf("expected no captures without type information, got %v", res.Captures())
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []resolve.IndexPolicy{resolve.IndexIgnore, resolve.IndexRestrict, resolve.IndexDecompose} {
		got, err := resolve.ParsePolicy(p.String())
		require.NoError(t, err)
		if got != p {
			t.Errorf("expected %s but got %s", p, got)
		}
	}
	if p, err := resolve.ParsePolicy(""); err != nil || p != resolve.IndexRestrict {
		t.Errorf("expected empty policy to be restrict, got %s (%v)", p, err)
	}
	if _, err := resolve.ParsePolicy("split"); err == nil {
		t.Error("expected unknown policy to fail")
	}
}

func TestParallelRoot(t *testing.T) {
	src := `package main
func main() {
	var a [16]int
	//amdahl:parallel
	for i := 0; i < len(a) - 1; i++ {
		a[i+1] = a[i] + 1
	}
}`
	loops, r := nests(t, src)
	res, err := r.Resolve(loops[0])
	require.NoError(t, err)
	if expect, got := "len(a) - 1", types.ExprString(res.Bound()); expect != got {
		t.Errorf("expected bound %q unchanged but got %q", expect, got)
	}
	if expect, got := 1, regions(res.Loop); expect != got {
		t.Errorf("expected %d region but got %d", expect, got)
	}
	if res.Dispatch != res.Loop {
		t.Errorf("expected root to dispatch its own region")
	}
	if expect, got := 0, res.Region.NestLevel; expect != got {
		t.Errorf("expected region at nest level %d but got %d", expect, got)
	}
	if expect, got := 1, res.Levels(); expect != got {
		t.Errorf("expected %d directive level but got %d", expect, got)
	}
}
