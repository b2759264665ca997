package compiler

import (
	"errors"
	"os"
	"strings"
	"testing"

	"c2c/internal/ast"
	"c2c/internal/build"
	"c2c/internal/diag"
	"c2c/internal/options"
)

type closer struct{ closed int }

func (c *closer) Close() error { c.closed++; return nil }

func buildWith(inst *Instance, f *ast.File) *build.Module {
	env := &build.Env{
		Arena:    inst.Arena,
		Types:    inst.Types,
		Folder:   inst.Folder,
		Reporter: inst.Reporter(),
		Dialect:  inst.Dialect,
	}
	return build.Build(env, inst.Modules.Add(f.Module, "", 0), f)
}

// undeclared returns a module whose function body uses n undeclared names.
func undeclared(n int) *ast.File {
	b := ast.NewBuilder("bad.c")
	var stmts []ast.NodeID
	for i := 0; i < n; i++ {
		stmts = append(stmts, b.At(uint32(i+2)).ExprStmt(b.Ident("missing"+string(rune('a'+i)))))
	}
	b.At(1).Top(b.FuncDef("f", nil, b.TFunc(b.TName("void"), ast.FlagVoidList), b.Compound(stmts...)))
	return b.File()
}

func TestErrorCeilingAbortsInstance(t *testing.T) {
	inst, err := New(options.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := &closer{}
	inst.Register("stream", res)

	reached := false
	r := inst.Run(func(in *Instance) error {
		buildWith(in, undeclared(8))
		reached = true
		return nil
	})
	if reached {
		t.Fatalf("build continued past the error ceiling")
	}
	if r.Code != CodeAborted || r.Abort == nil || r.Abort.Code != diag.TooManyErrors {
		t.Fatalf("result = %+v", r)
	}
	if len(r.Diagnostics) != diag.DefaultMaxErrors {
		t.Fatalf("diagnostics = %d, want %d", len(r.Diagnostics), diag.DefaultMaxErrors)
	}
	if res.closed != 1 || inst.openResources() != 0 {
		t.Fatalf("resources not released: closed=%d open=%d", res.closed, inst.openResources())
	}
}

func TestErrorsBelowCeiling(t *testing.T) {
	opts := options.Default()
	opts.MaxErrors = 10
	inst, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := inst.Run(func(in *Instance) error {
		buildWith(in, undeclared(3))
		return nil
	})
	if r.Code != CodeErrors || r.Abort != nil || len(r.Diagnostics) != 3 {
		t.Fatalf("result = %+v", r)
	}
	if !strings.Contains(r.Diagnostics[0].Message, "'missinga' undeclared") {
		t.Fatalf("first diagnostic = %q", r.Diagnostics[0].Message)
	}
}

func TestHostErrorAndCleanRun(t *testing.T) {
	inst, _ := New(options.Default())
	boom := errors.New("boom")
	if r := inst.Run(func(*Instance) error { return boom }); r.Code != CodeFailure || !errors.Is(r.Err, boom) {
		t.Fatalf("result = %+v", r)
	}

	inst, _ = New(options.Default())
	if r := inst.Run(func(*Instance) error { return nil }); !r.OK() {
		t.Fatalf("result = %+v", r)
	}
}

func TestTempDirReleased(t *testing.T) {
	inst, _ := New(options.Default())
	dir, err := inst.TempDir("c2c-test-*")
	if err != nil {
		t.Fatalf("TempDir: %v", err)
	}
	f, err := inst.Create(dir + "/out.h")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.Close() // closing twice is fine
	if err := inst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("temp dir survived: %v", err)
	}
	if err := inst.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// registration after teardown releases immediately
	c := &closer{}
	inst.Register("late", c)
	if c.closed != 1 {
		t.Fatalf("late resource leaked")
	}
}

func TestInstancesAreIsolated(t *testing.T) {
	a, _ := New(options.Default())
	b, _ := New(options.Default())
	defer a.Close()
	defer b.Close()
	if a.ID == b.ID || a.Arena == b.Arena || a.Types == b.Types || a.Bag == b.Bag {
		t.Fatalf("instances share state")
	}
}

func TestForeignPanicReleasesResources(t *testing.T) {
	inst, _ := New(options.Default())
	var dir string
	func() {
		defer func() {
			if r := recover(); r != "internal error" {
				t.Fatalf("panic = %v, want it re-raised", r)
			}
		}()
		inst.Run(func(in *Instance) error {
			var err error
			if dir, err = in.TempDir("c2c-panic-*"); err != nil {
				t.Fatalf("TempDir: %v", err)
			}
			panic("internal error")
		})
	}()
	if n := inst.openResources(); n != 0 {
		t.Fatalf("open resources after panic: %d", n)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("temp dir survived the panic: %v", err)
	}
}
