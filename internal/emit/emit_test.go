package emit

import (
	"path/filepath"
	"strings"
	"testing"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/build"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/link"
	"c2c/internal/source"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

func extract(t *testing.T, files ...*ast.File) *Layout {
	t.Helper()
	bag := diag.NewBag(0)
	in := types.NewInterner()
	env := &build.Env{
		Arena:     symbols.NewArena(0),
		Types:     in,
		Folder:    etype.NewFolder(abi.ForDevice(abi.DeviceC64), in),
		Reporter:  diag.BagReporter{Bag: bag},
		Reentrant: true,
	}
	x := link.NewExtractionLinker(link.Options{Required: true}, env.Arena, in, env.Reporter)
	l := &Layout{Types: in, Files: make(map[source.ModuleID]*ast.File)}
	for i, f := range files {
		id := source.ModuleID(i + 1)
		m := build.Build(env, id, f)
		l.Files[id] = f
		x.Add(m.Name, m.Table)
	}
	x.Run()
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	l.Tags = x.ExtractedTags()
	l.InstanceData = x.InstanceData()
	l.Initialized = x.InitializedInstanceData()
	return l
}

func threeModules() []*ast.File {
	a := ast.NewBuilder("a.c")
	a.Top(a.Decl("", nil, a.TStruct("P", true,
		a.Field("x", a.TName("int")),
		a.Field("y", a.TName("int"))), ast.NoNodeID))
	a.Top(a.Decl("origin", []ast.Spec{ast.SpecStatic}, a.TStruct("P", false),
		a.InitList(a.Int("1"), a.Int("2"))))
	a.Top(a.Decl("a", []ast.Spec{ast.SpecStatic}, a.TName("int"), ast.NoNodeID))

	b := ast.NewBuilder("b.c")
	b.Top(b.Decl("b", []ast.Spec{ast.SpecStatic}, b.TName("int"), b.Int("5")))

	c := ast.NewBuilder("c.c")
	c.Top(c.Decl("a", []ast.Spec{ast.SpecExtern}, c.TName("int"), ast.NoNodeID))
	return []*ast.File{a.File(), b.File(), c.File()}
}

const wantHeader = `/*
   File generated automatically, do not modify
*/

/* Extracted type tags */
struct P {
  int x;
  int y;
};

/* Extracted instance data */
struct DATA_STRUCTURE {
  struct P origin;
  int a;
  int b;
};
#define DATA (*((struct DATA_STRUCTURE *)_this))
#define INIT_DATA {\
           .origin = {1, 2},\
           .b = 5\
         }
`

const wantMain = `/*
   File generated automatically, do not modify
*/

#include "DATA.h"

#define DATA my_data_structure

static struct DATA_STRUCTURE my_data_structure
#ifdef INIT_DATA
 = INIT_DATA
#endif
;

extern int __reentrant_run(void *, int , char * [ ]);
int main( int argc , char * argv [ ]) {
  return(__reentrant_run(&my_data_structure,argc,argv));
}
`

func TestHeaderGolden(t *testing.T) {
	l := extract(t, threeModules()...)
	var sb strings.Builder
	if err := WriteHeader(&sb, l); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if got := sb.String(); got != wantHeader {
		t.Fatalf("header mismatch\n--- got\n%s\n--- want\n%s", got, wantHeader)
	}
}

func TestHeaderWithoutInitializers(t *testing.T) {
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("n", nil, b.TArray(b.TName("char"), b.Int("16")), ast.NoNodeID))
	l := extract(t, b.File())
	var sb strings.Builder
	if err := WriteHeader(&sb, l); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got := sb.String()
	if strings.Contains(got, "INIT_DATA") {
		t.Fatalf("INIT_DATA emitted without initializers:\n%s", got)
	}
	if !strings.Contains(got, "struct DATA_STRUCTURE {\n  char n[16];\n};\n") {
		t.Fatalf("unexpected layout:\n%s", got)
	}
	if !strings.HasSuffix(got, "#define DATA (*((struct DATA_STRUCTURE *)_this))\n") {
		t.Fatalf("header does not end with the DATA accessor:\n%s", got)
	}
}

func TestPaths(t *testing.T) {
	h, c := Paths("out", "")
	if h != filepath.Join("out", "DATA.h") || c != filepath.Join("out", "DATA.h.c") {
		t.Fatalf("paths = %s, %s", h, c)
	}
	if h, _ := Paths("out", "STATE.h"); filepath.Base(h) != "STATE.h" {
		t.Fatalf("custom header path = %s", h)
	}
}

func TestMainGolden(t *testing.T) {
	var sb strings.Builder
	if err := WriteMain(&sb, DefaultHeader); err != nil {
		t.Fatalf("WriteMain: %v", err)
	}
	if sb.String() != wantMain {
		t.Fatalf("stub mismatch\n--- got\n%s\n--- want\n%s", sb.String(), wantMain)
	}
}

func TestMainIncludesCustomHeader(t *testing.T) {
	var sb strings.Builder
	if err := WriteMain(&sb, "STATE.h"); err != nil {
		t.Fatalf("WriteMain: %v", err)
	}
	if !strings.Contains(sb.String(), "#include \"STATE.h\"\n") {
		t.Fatalf("stub does not include the header:\n%s", sb.String())
	}
}
