package build

import (
	"strings"
	"testing"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/literal"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

func newEnv(dialect abi.Dialect, dev abi.Device) (*Env, *diag.Bag) {
	bag := diag.NewBag(0)
	in := types.NewInterner()
	pair := abi.PairFor(dialect, dev)
	return &Env{
		Arena:    symbols.NewArena(0),
		Types:    in,
		Folder:   etype.NewFolder(pair.Source, in),
		Reporter: diag.BagReporter{Bag: bag},
		Dialect:  dialect,
	}, bag
}

func messages(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Severity.Prefix()+": "+d.Message)
	}
	return out
}

func expectClean(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(bag))
	}
}

func expectMessage(t *testing.T, bag *diag.Bag, want string) {
	t.Helper()
	for _, m := range messages(bag) {
		if strings.Contains(m, want) {
			return
		}
	}
	t.Fatalf("no diagnostic containing %q in %v", want, messages(bag))
}

func TestExternAndDefinitionMerge(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	b.At(1).Top(b.Decl("x", []ast.Spec{ast.SpecExtern}, b.TName("int"), ast.NoNodeID))
	b.At(2).Top(b.Decl("x", nil, b.TName("int"), b.Int("1")))
	m := Build(env, 1, b.File())
	expectClean(t, bag)

	syms := m.Table.Symbols()
	if len(syms) != 1 {
		t.Fatalf("got %d symbols, want 1", len(syms))
	}
	x := syms[0]
	if x.IsExtern() || !x.HasInitializer() {
		t.Fatalf("representative is not the definition: %s", m.Table.Describe(x))
	}
	if got := len(env.Arena.Brothers(x.ID)); got != 2 {
		t.Fatalf("brothers = %d, want 2", got)
	}
	lit, ok := m.Inits[x.ID].(*literal.Expr)
	if !ok || lit.String() != "1" || !lit.IsConstant() {
		t.Fatalf("init literal = %#v", m.Inits[x.ID])
	}
}

func TestIncompleteArraysCompletedByInitializer(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("a", nil, b.TArray(b.TName("int"), ast.NoNodeID), b.InitList(b.Int("1"), b.Int("2"), b.Int("3"))))
	b.Top(b.Decl("s", nil, b.TArray(b.TName("char"), ast.NoNodeID), b.Str("hi")))
	b.Top(b.Decl("d", nil, b.TArray(b.TName("int"), ast.NoNodeID), b.InitList(b.DesigIndex(b.Int("4"), b.Int("7")))))
	m := Build(env, 1, b.File())
	expectClean(t, bag)

	in := env.Types
	bt := in.Builtins()
	for _, tc := range []struct {
		name string
		want types.TypeID
	}{
		{"a", in.ArrayOf(bt.Int, 3)},
		{"s", in.ArrayOf(bt.Char, 3)},
		{"d", in.ArrayOf(bt.Int, 5)},
	} {
		if got := m.Table.LookupTop(tc.name).Type; got != tc.want {
			t.Fatalf("%s: type %s, want %s", tc.name, in.String(got), in.String(tc.want))
		}
	}
	if got := m.Inits[m.Table.LookupTop("d").ID].String(); got != "{<null>, <null>, <null>, <null>, 7}" {
		t.Fatalf("designated literal = %s", got)
	}
}

func TestParentsFollowTagsAndTypedefs(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("", nil, b.TStruct("inner", true, b.Field("v", b.TName("int"))), ast.NoNodeID))
	b.Top(b.Decl("", nil, b.TStruct("S", true,
		b.Field("in", b.TStruct("inner", false)),
		b.Field("n", b.TName("long"))), ast.NoNodeID))
	b.Top(b.Decl("S_t", []ast.Spec{ast.SpecTypedef}, b.TStruct("S", false), ast.NoNodeID))
	b.Top(b.Decl("g", nil, b.TName("S_t"), ast.NoNodeID))
	m := Build(env, 1, b.File())
	expectClean(t, bag)

	g := m.Table.LookupTop("g")
	var names []string
	for _, id := range env.Arena.ParentClosure(g.ID) {
		names = append(names, env.Arena.Get(id).Name)
	}
	if got := strings.Join(names, ","); got != "inner,S,S_t" {
		t.Fatalf("parent closure = %s", got)
	}
	if !env.Types.IsComplete(g.Type) {
		t.Fatalf("struct S is incomplete")
	}
}

func TestEnumConstantsFold(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("", nil, b.TEnum("E", true,
		b.Enumerator("A", ast.NoNodeID),
		b.Enumerator("B", b.Int("5")),
		b.Enumerator("C", ast.NoNodeID)), ast.NoNodeID))
	sum := b.Binary("*", b.Ident("C"), b.Int("2"))
	b.Top(b.Decl("k", []ast.Spec{ast.SpecStatic}, b.TName("int"), sum))
	m := Build(env, 1, b.File())
	expectClean(t, bag)

	c := m.Table.LookupTop("C")
	if c.EnumConst.Value != 6 {
		t.Fatalf("C = %d, want 6", c.EnumConst.Value)
	}
	tag := m.Table.LookupTag("E")
	if len(tag.Tag.Children) != 3 || c.EnumConst.Tag != tag.ID {
		t.Fatalf("enum tag does not own its constants")
	}
	e, _ := m.Annotations.Get(sum)
	if got := env.Folder.Display(e); got != "12" {
		t.Fatalf("C*2 = %s, want 12", got)
	}
}

func TestFunctionScopesAndUndeclared(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	fn := b.TFunc(b.TName("int"), 0, b.Param("n", b.TName("int")))
	body := b.Compound(
		b.Decl("local", nil, b.TName("int"), b.Ident("n")),
		b.At(4).ExprStmt(b.Ident("missing")),
		b.Return(b.Ident("local")),
	)
	b.At(2).Top(b.FuncDef("f", nil, fn, body))
	m := Build(env, 1, b.File())

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %v, want one", messages(bag))
	}
	expectMessage(t, bag, "'missing' undeclared")
	if d := bag.Items()[0]; d.Primary.Line != 4 {
		t.Fatalf("reported at line %d, want 4", d.Primary.Line)
	}
	if m.Table.LookupTop("local") != nil || m.Table.LookupTop("n") != nil {
		t.Fatalf("function locals leaked into the top scope")
	}
	f := m.Table.LookupTop("f")
	if !f.Function.Definition {
		t.Fatalf("f is not a definition")
	}
}

func TestStaticInitializerMustBeConstant(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("y", nil, b.TName("int"), ast.NoNodeID))
	b.Top(b.Decl("z", nil, b.TName("int"), b.Ident("y")))
	b.Top(b.Decl("p", nil, b.TPtr(b.TName("int")), b.Unary("&", b.Ident("y"))))
	m := Build(env, 1, b.File())

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %v, want one", messages(bag))
	}
	expectMessage(t, bag, "initializer element is not constant")

	p := m.Inits[m.Table.LookupTop("p").ID]
	if !p.IsConstant() {
		t.Fatalf("&y is not a link-time constant")
	}
	y := m.Table.LookupTop("y")
	if parents := p.Parents(); len(parents) != 1 || parents[0] != y.ID {
		t.Fatalf("literal parents = %v, want [%d]", parents, y.ID)
	}
}

func TestMangledBuiltinCallResolvesOverload(t *testing.T) {
	env, bag := newEnv(abi.DialectOpenCL, abi.DeviceC64)
	b := ast.NewBuilder("k.cl")
	fn := b.TFunc(b.TName("void"), 0, b.Param("v", b.TName("float4", ast.FlagConst)))
	callee := b.Ident("length")
	call := b.Call(callee, b.Ident("v"))
	body := b.Compound(
		b.Decl("n", nil, b.TName("int4"), ast.NoNodeID),
		b.Decl("l", nil, b.TName("float"), call),
		b.At(7).ExprStmt(b.Call(b.Ident("length"), b.Ident("n"))),
	)
	b.Top(b.FuncDef("k", []ast.Spec{ast.SpecKernel}, fn, body))
	m := Build(env, 1, b.File())

	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %v, want one", messages(bag))
	}
	expectMessage(t, bag, "no matching overload for call to 'length'")

	e, ok := m.Annotations.Get(callee)
	if !ok || !e.Symbol.IsValid() {
		t.Fatalf("callee not resolved")
	}
	overload := env.Arena.Get(e.Symbol)
	if got := symbols.OutputName(overload, env.Types); got != "_Z6lengthV4f" {
		t.Fatalf("output name = %s", got)
	}
	res, _ := m.Annotations.Get(call)
	if res.Type != env.Types.Builtins().Float {
		t.Fatalf("length returns %s", env.Types.String(res.Type))
	}

	k := m.Table.LookupTop("k")
	if !k.Function.Kernel || k.Function.KernelProto == nil || len(k.Function.KernelProto.Params) != 1 {
		t.Fatalf("kernel prototype not recorded: %s", m.Table.Describe(k))
	}
}

func TestVectorLiteralComponentCount(t *testing.T) {
	env, bag := newEnv(abi.DialectOpenCL, abi.DeviceOCL)
	b := ast.NewBuilder("k.cl")
	b.Top(b.Decl("two", []ast.Spec{ast.SpecStatic}, b.TName("float2", ast.FlagConstantSpace),
		b.VectorLit(b.TName("float2"), b.Float("1.0f"), b.Float("2.0f"))))
	b.Top(b.Decl("all", nil, b.TName("float4"), b.VectorLit(b.TName("float4"), b.Float("0.5f"))))
	b.Top(b.Decl("mix", nil, b.TName("float4"),
		b.VectorLit(b.TName("float4"), b.Ident("two"), b.Float("3.0f"), b.Float("4.0f"))))
	b.At(9).Top(b.Decl("bad", nil, b.TName("float4"),
		b.VectorLit(b.TName("float4"), b.Float("1.0f"), b.Float("2.0f"))))
	m := Build(env, 1, b.File())

	expectMessage(t, bag, "vector literal of type 'float4' has 2 components, expected 4")
	all := m.Inits[m.Table.LookupTop("all").ID].(*literal.Vector)
	if !all.IsScalarDefined() {
		t.Fatalf("(float4)(0.5f) is not a broadcast")
	}
	mix := m.Inits[m.Table.LookupTop("mix").ID].(*literal.Vector)
	if !mix.IsComplexDefined() || mix.Definitions() != 3 {
		t.Fatalf("mix: complex=%v defs=%d", mix.IsComplexDefined(), mix.Definitions())
	}
}

func TestBracedVectorInitializerCountsDefinitions(t *testing.T) {
	env, bag := newEnv(abi.DialectOpenCL, abi.DeviceOCL)
	b := ast.NewBuilder("k.cl")
	b.Top(b.Decl("v", nil, b.TName("float4"),
		b.InitList(b.Float("1.0f"), b.Float("2.0f"), b.Float("3.0f"), b.Float("4.0f"))))
	b.Top(b.Decl("w", nil, b.TName("float4"), b.InitList(b.DesigIndex(b.Int("2"), b.Float("5.0f")))))
	m := Build(env, 1, b.File())
	expectClean(t, bag)

	v := m.Inits[m.Table.LookupTop("v").ID].(*literal.Vector)
	if v.Definitions() != 4 || !v.IsElementwise() || v.IsComplexDefined() || v.IsScalarDefined() {
		t.Fatalf("v: defs=%d elementwise=%v complex=%v scalar=%v",
			v.Definitions(), v.IsElementwise(), v.IsComplexDefined(), v.IsScalarDefined())
	}
	w := m.Inits[m.Table.LookupTop("w").ID].(*literal.Vector)
	if w.Definitions() != 1 {
		t.Fatalf("w: defs=%d, want 1", w.Definitions())
	}
}

func TestUnsupportedScalarOnKernelABI(t *testing.T) {
	env, bag := newEnv(abi.DialectOpenCL, abi.DeviceC64)
	b := ast.NewBuilder("k.cl")
	b.Top(b.Decl("d", nil, b.TName("double"), ast.NoNodeID))
	Build(env, 1, b.File())
	expectMessage(t, bag, "type 'double' is not supported by the ocl ABI")
}

func TestReentrantClassification(t *testing.T) {
	env, bag := newEnv(abi.DialectC, abi.DeviceC64)
	env.Reentrant = true
	b := ast.NewBuilder("a.c")
	b.Top(b.Decl("", nil, b.TStruct("P", true, b.Field("x", b.TName("int"))), ast.NoNodeID))
	b.Top(b.Decl("a", []ast.Spec{ast.SpecStatic}, b.TName("int"), ast.NoNodeID))
	b.Top(b.Decl("e", []ast.Spec{ast.SpecExtern}, b.TName("int"), ast.NoNodeID))
	b.Top(b.Decl("b", nil, b.TStruct("P", false), b.InitList(b.Int("5"))))
	body := b.Compound(
		b.Decl("calls", []ast.Spec{ast.SpecStatic}, b.TName("int"), ast.NoNodeID),
		b.Decl("tmp", nil, b.TName("int"), ast.NoNodeID),
	)
	b.Top(b.FuncDef("f", nil, b.TFunc(b.TName("void"), ast.FlagVoidList), body))
	b.Top(b.Decl("a", []ast.Spec{ast.SpecStatic}, b.TName("int"), b.Int("1")))
	m := Build(env, 3, b.File())
	expectClean(t, bag)

	var data []string
	for _, s := range m.Table.InstanceData() {
		data = append(data, s.CurrentName())
	}
	if got := strings.Join(data, ","); got != "a,b,_M3_1_calls" {
		t.Fatalf("instance data = %s", got)
	}
	if !m.Table.InstanceData()[0].HasInitializer() {
		t.Fatalf("a resolved to the tentative declaration")
	}
	if ext := m.Table.Externs(); len(ext) != 1 || ext[0].Name != "e" {
		t.Fatalf("externs = %v", ext)
	}
	if tags := m.Table.ExtractedTags(); len(tags) != 1 || tags[0].Name != "P" {
		t.Fatalf("extracted tags = %v", tags)
	}
}
