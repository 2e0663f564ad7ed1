package build_test

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/nickng/amdahl/source/build"
)

var (
	helloProg = `
	package main
	import "fmt"
	func main() {
		//amdahl:parallel
		for i := 0; i < 2; i++ {
			fmt.Println("hello", i)
		}
	}`
	badProg = `package main; func main() { x := 1 }`

	testdir string
)

func init() {
	testdir, _ = os.Getwd() // Save the dir where the test files are, for the runnable examples.
}

// Test loading from files.
func TestBuildFromFiles(t *testing.T) {
	files := []string{"testdata/main.go", "testdata/foo.go", "testdata/bar.go"}
	info, err := build.FromFiles(files).Default().Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, name := range []string{"main", "foo", "bar"} {
		if info.FuncDecl(name) == nil {
			t.Errorf("cannot find main.%s()", name)
		}
	}
	if expect, got := 3, len(info.FuncDecls()); expect != got {
		t.Errorf("expected %d functions but got %d", expect, got)
	}
	if expect, got := "main", info.Pkg.Name(); expect != got {
		t.Errorf("expected package %s but got %s", expect, got)
	}
}

// Test loading from string/reader.
func TestBuildFromReader(t *testing.T) {
	info, err := build.FromReader(strings.NewReader(helloProg)).Default().Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if info.FuncDecl("main") == nil {
		t.Errorf("cannot find main.main()")
	}
	if expect, got := 1, len(info.Files[0].Comments); expect != got {
		t.Errorf("expected %d comment groups to be kept but got %d", expect, got)
	}
	if len(info.Types.Uses) == 0 {
		t.Errorf("expected type information to be recorded")
	}
}

func TestWithBuildLog(t *testing.T) {
	buf := new(bytes.Buffer)
	conf := build.FromReader(strings.NewReader(helloProg)).WithBuildLog(buf, log.LstdFlags)
	info, err := conf.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if info.BldLog != buf {
		t.Errorf("Expects build log to propagate to built source, but got: %v",
			info.BldLog)
	}
	if !strings.Contains(buf.String(), "loaded and type checked") {
		t.Errorf("Build log was set but not written to\nlog contains:\n%s",
			buf.String())
	}
}

func TestTypeErrors(t *testing.T) {
	if _, err := build.FromReader(strings.NewReader(badProg)).Default().Build(); err == nil {
		t.Errorf("expected unused variable to fail the build")
	}
	buf := new(bytes.Buffer)
	info, err := build.FromReader(strings.NewReader(badProg)).Default().AllowTypeErrors().WithBuildLog(buf, 0).Build()
	if err != nil {
		t.Fatalf("build with type errors allowed failed: %v", err)
	}
	if info.FuncDecl("main") == nil {
		t.Errorf("cannot find main.main()")
	}
	if !strings.Contains(buf.String(), "declared and not used") {
		t.Errorf("expected type error in build log, got:\n%s", buf.String())
	}
}

func TestNoFiles(t *testing.T) {
	if _, err := build.FromFiles(nil).Build(); err == nil {
		t.Errorf("expected build without files to fail")
	}
}

func ExampleFromFiles() {
	os.Chdir(testdir)
	files := []string{"testdata/main.go", "testdata/foo.go", "testdata/bar.go"}
	info, err := build.FromFiles(files).Default().Build()
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	_ = info // Use info here
	// output:
}

func ExampleFromReader() {
	conf := build.FromReader(strings.NewReader("package main; func main() {}"))
	info, err := conf.Build()
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	_ = info // Use info here
	// output:
}
