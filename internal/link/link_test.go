package link

import (
	"strings"
	"testing"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/build"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/source"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

type program struct {
	env     *build.Env
	bag     *diag.Bag
	modules []*build.Module
}

func newProgram(dialect abi.Dialect, reentrant bool) *program {
	bag := diag.NewBag(0)
	in := types.NewInterner()
	return &program{
		bag: bag,
		env: &build.Env{
			Arena:     symbols.NewArena(0),
			Types:     in,
			Folder:    etype.NewFolder(abi.PairFor(dialect, abi.DeviceC64).Source, in),
			Reporter:  diag.BagReporter{Bag: bag},
			Dialect:   dialect,
			Reentrant: reentrant,
		},
	}
}

// module builds one module whose top-level items come from fill.
func (p *program) module(name string, fill func(b *ast.Builder)) *build.Module {
	b := ast.NewBuilder(name)
	fill(b)
	m := build.Build(p.env, source.ModuleID(len(p.modules)+1), b.File())
	p.modules = append(p.modules, m)
	return m
}

func (p *program) linker(required bool) *Linker {
	l := NewLinker(Options{Required: required}, p.env.Arena, p.env.Types, p.env.Reporter)
	for _, m := range p.modules {
		l.Add(m.Name, m.Table)
	}
	return l
}

func (p *program) extraction(required bool) *ExtractionLinker {
	x := NewExtractionLinker(Options{Required: required}, p.env.Arena, p.env.Types, p.env.Reporter)
	for _, m := range p.modules {
		x.Add(m.Name, m.Table)
	}
	return x
}

func messages(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Severity.Prefix()+": "+d.Message)
	}
	return out
}

func externInt(b *ast.Builder, name string) {
	b.Top(b.Decl(name, []ast.Spec{ast.SpecExtern}, b.TName("int"), ast.NoNodeID))
}

func TestExternResolvedToSingleDefinition(t *testing.T) {
	p := newProgram(abi.DialectC, false)
	a := p.module("a.c", func(b *ast.Builder) { externInt(b, "x") })
	bm := p.module("b.c", func(b *ast.Builder) {
		externInt(b, "x")
		b.Top(b.Decl("x", nil, b.TName("int"), b.Int("1")))
	})
	g := p.linker(true).Run()
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(p.bag))
	}

	ax := a.Table.LookupTop("x")
	bx := bm.Table.LookupTop("x")
	if g.Lookup("x") != bx {
		t.Fatalf("global x is not the definition")
	}
	if !ax.ProgramInternal || !bx.ProgramInternal {
		t.Fatalf("x not program internal: a=%v b=%v", ax.ProgramInternal, bx.ProgramInternal)
	}
	p.env.Arena.Rename(ax.ID, "x_1")
	if ax.CurrentName() != "x_1" || bx.CurrentName() != "x_1" {
		t.Fatalf("modules reference x differently: %s / %s", ax.CurrentName(), bx.CurrentName())
	}
}

func TestConflictingTypesNameBothSites(t *testing.T) {
	p := newProgram(abi.DialectC, false)
	p.module("a.c", func(b *ast.Builder) {
		b.At(3).Top(b.Decl("x", []ast.Spec{ast.SpecExtern}, b.TName("int"), ast.NoNodeID))
	})
	p.module("b.c", func(b *ast.Builder) {
		b.At(5).Top(b.Decl("x", nil, b.TName("float"), b.Float("1.0f")))
	})
	p.linker(true).Run()

	items := p.bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %v, want one", messages(p.bag))
	}
	d := items[0]
	if d.Code != diag.LinkConflictingTypes || !strings.Contains(d.Message, "conflicting types for 'x'") {
		t.Fatalf("got %v", messages(p.bag))
	}
	if d.Primary != (source.Loc{Module: 1, Line: 3}) {
		t.Fatalf("primary = %+v", d.Primary)
	}
	if len(d.Notes) != 1 || d.Notes[0].Loc != (source.Loc{Module: 2, Line: 5}) {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestMultipleDefinition(t *testing.T) {
	for _, tc := range []struct {
		required bool
		sev      diag.Severity
		msg      string
	}{
		{true, diag.SevError, "multiple definition of 'y'"},
		{false, diag.SevWarning, "multiple definition of 'y' (no error forced by option)"},
	} {
		p := newProgram(abi.DialectC, false)
		for _, name := range []string{"a.c", "b.c", "c.c"} {
			p.module(name, func(b *ast.Builder) {
				b.Top(b.Decl("y", nil, b.TName("int"), b.Int("1")))
			})
		}
		p.linker(tc.required).Run()
		items := p.bag.Items()
		if len(items) != 1 {
			t.Fatalf("required=%v: diagnostics = %v, want one", tc.required, messages(p.bag))
		}
		if items[0].Severity != tc.sev || items[0].Message != tc.msg {
			t.Fatalf("required=%v: got %v", tc.required, messages(p.bag))
		}
	}
}

func TestUnresolvedExterns(t *testing.T) {
	p := newProgram(abi.DialectC, false)
	m := p.module("a.c", func(b *ast.Builder) {
		externInt(b, "z")
		b.Top(b.Decl("g", nil, b.TFunc(b.TName("void"), ast.FlagVoidList), ast.NoNodeID))
	})
	p.linker(false).Run()
	if p.bag.Len() != 0 {
		t.Fatalf("tolerated link reported %v", messages(p.bag))
	}
	if m.Table.LookupTop("z").ProgramInternal {
		t.Fatalf("unresolved z marked program internal")
	}

	p = newProgram(abi.DialectC, false)
	p.module("a.c", func(b *ast.Builder) {
		externInt(b, "z")
		b.Top(b.Decl("g", nil, b.TFunc(b.TName("void"), ast.FlagVoidList), ast.NoNodeID))
	})
	p.linker(true).Run()
	got := strings.Join(messages(p.bag), "; ")
	if got != "error: undefined reference to 'z'; error: undefined reference to 'g'" {
		t.Fatalf("got %s", got)
	}
}

func TestBuiltinsNeverUnresolved(t *testing.T) {
	p := newProgram(abi.DialectOpenCL, false)
	p.module("k.cl", func(b *ast.Builder) {
		fn := b.TFunc(b.TName("void"), 0, b.Param("out", b.TPtr(b.TName("float", ast.FlagGlobal))))
		body := b.Compound(
			b.ExprStmt(b.Assign("=",
				b.Index(b.Ident("out"), b.Call(b.Ident("get_global_id"), b.Int("0"))),
				b.Call(b.Ident("sqrt"), b.Float("2.0f")))),
		)
		b.Top(b.FuncDef("k", []ast.Spec{ast.SpecKernel}, fn, body))
	})
	g := p.linker(true).Run()
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(p.bag))
	}
	if g.Len() != 1 || g.Lookup("k") == nil {
		t.Fatalf("global table holds %d symbols", g.Len())
	}
}

func TestPrototypeLinksToDefinitionInOtherModule(t *testing.T) {
	p := newProgram(abi.DialectC, false)
	fnType := func(b *ast.Builder) ast.NodeID {
		return b.TFunc(b.TName("int"), 0, b.Param("n", b.TName("int")))
	}
	a := p.module("a.c", func(b *ast.Builder) {
		b.Top(b.Decl("f", nil, fnType(b), ast.NoNodeID))
	})
	bm := p.module("b.c", func(b *ast.Builder) {
		b.Top(b.FuncDef("f", nil, fnType(b), b.Compound(b.Return(b.Ident("n")))))
	})
	p.linker(true).Run()
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(p.bag))
	}
	proto, def := a.Table.LookupTop("f"), bm.Table.LookupTop("f")
	if !p.env.Arena.AreBrothers(proto.ID, def.ID) || !proto.ProgramInternal {
		t.Fatalf("prototype not linked to the definition")
	}
}

func TestExtractionOrderAndInitializers(t *testing.T) {
	p := newProgram(abi.DialectC, true)
	first := p.module("a.c", func(b *ast.Builder) {
		b.Top(b.Decl("a", []ast.Spec{ast.SpecStatic}, b.TName("int"), ast.NoNodeID))
	})
	p.module("b.c", func(b *ast.Builder) {
		b.Top(b.Decl("b", []ast.Spec{ast.SpecStatic}, b.TName("int"), b.Int("5")))
	})
	third := p.module("c.c", func(b *ast.Builder) { externInt(b, "a") })

	x := p.extraction(true)
	x.Run()
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(p.bag))
	}
	var names []string
	for _, s := range x.InstanceData() {
		names = append(names, s.CurrentName())
	}
	if got := strings.Join(names, ","); got != "a,b" {
		t.Fatalf("instance data = %s", got)
	}
	withInit := x.InitializedInstanceData()
	if len(withInit) != 1 || withInit[0].Name != "b" {
		t.Fatalf("initialized = %v", withInit)
	}
	ext := third.Table.LookupTop("a")
	if x.Owner(ext) != first.Table.LookupTop("a") {
		t.Fatalf("extern a resolved to %v", x.Owner(ext))
	}
	if !ext.NoDeclaration || !ext.ProgramInternal {
		t.Fatalf("extern a still declared")
	}
}

func TestExtractionErrors(t *testing.T) {
	p := newProgram(abi.DialectC, true)
	p.module("a.c", func(b *ast.Builder) {
		b.Top(b.Decl("c", nil, b.TName("int"), ast.NoNodeID))
	})
	p.module("b.c", func(b *ast.Builder) {
		b.Top(b.Decl("c", nil, b.TName("int"), ast.NoNodeID))
		externInt(b, "nobody")
	})
	x := p.extraction(true)
	x.Run()
	got := strings.Join(messages(p.bag), "; ")
	want := "error: multiple definition of 'c'; error: extern 'nobody' does not reference any instance data"
	if got != want {
		t.Fatalf("got %s", got)
	}
	if len(x.InstanceData()) != 1 {
		t.Fatalf("instance data duplicated: %d", len(x.InstanceData()))
	}
}
