package etype

import (
	"errors"
	"testing"

	"c2c/internal/abi"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

func newFolder(dev abi.Device) *Folder {
	return NewFolder(abi.ForDevice(dev), types.NewInterner())
}

func TestUsualArithmeticConversions(t *testing.T) {
	f32 := newFolder(abi.DeviceC32)
	f64 := newFolder(abi.DeviceC64)
	b := f32.Types.Builtins()
	cases := []struct {
		f    *Folder
		a, b types.TypeID
		want abi.Scalar
	}{
		{f32, b.Char, b.Char, abi.Int},
		{f32, b.Int, b.UInt, abi.UInt},
		{f32, b.Long, b.UInt, abi.ULong},
		{f32, b.Float, b.Long, abi.Float},
		{f32, b.Double, b.Float, abi.Double},
		{f32, b.UShort, b.Short, abi.Int},
		{f32, b.Bool, b.Bool, abi.Int},
	}
	for _, tc := range cases {
		got := tc.f.UsualArithmetic(tc.a, tc.b)
		if got != tc.f.Types.Scalar(tc.want) {
			t.Fatalf("%s op %s = %s, want %s", tc.f.Types.String(tc.a), tc.f.Types.String(tc.b), tc.f.Types.String(got), tc.want)
		}
	}

	b64 := f64.Types.Builtins()
	if got := f64.UsualArithmetic(b64.Long, b64.UInt); got != b64.Long {
		t.Fatalf("lp64 long op uint = %s, want long", f64.Types.String(got))
	}
}

func TestIntegralFoldingKeepsPrecision(t *testing.T) {
	f := newFolder(abi.DeviceC32)
	b := f.Types.Builtins()
	one := Int64(b.Int, 1)
	shifted, err := f.Binary("<<", one, Int64(b.Int, 40))
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	v, ok := shifted.IntegralValue()
	if !ok || v.String() != "1099511627776" {
		t.Fatalf("1<<40 = %v", shifted)
	}
	if got := f.Display(shifted); got != "0" {
		t.Fatalf("Display wraps to int width: %q", got)
	}

	sum, _ := f.Binary("+", Int64(b.Int, 2), Int64(b.UInt, 3))
	if sum.Type != b.UInt || f.Display(sum) != "5u" {
		t.Fatalf("2 + 3u = %v (%s)", sum, f.Types.String(sum.Type))
	}

	q, _ := f.Binary("/", Int64(b.Int, -7), Int64(b.Int, 2))
	r, _ := f.Binary("%", Int64(b.Int, -7), Int64(b.Int, 2))
	if f.Display(q) != "-3" || f.Display(r) != "-1" {
		t.Fatalf("division truncates toward zero: %s %s", f.Display(q), f.Display(r))
	}

	if _, err := f.Binary("/", one, Int64(b.Int, 0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("division by zero: %v", err)
	}

	cmp, _ := f.Binary("<", Float(b.Double, 1.5), Int64(b.Int, 2))
	if cmp.Type != b.Int || f.Display(cmp) != "1" {
		t.Fatalf("1.5 < 2 = %v", cmp)
	}
}

func TestConstantnessIsConjunction(t *testing.T) {
	f := newFolder(abi.DeviceC32)
	b := f.Types.Builtins()
	got, err := f.Binary("*", Int64(b.Int, 3), Value(b.Int))
	if err != nil || got.IsConstant() {
		t.Fatalf("constant * variable = %v, %v", got, err)
	}
	if _, ok := got.IntegralValue(); ok {
		t.Fatalf("non-constant exposes a value")
	}
	assign, _ := f.Binary("=", EnrichedType{Type: b.Int, LValue: true}, Int64(b.Int, 1))
	if assign.IsConstant() {
		t.Fatalf("assignment folded")
	}
}

func TestKindsAreExclusive(t *testing.T) {
	f := newFolder(abi.DeviceC32)
	b := f.Types.Builtins()
	c := Float(b.Float, 2.5)
	if _, ok := c.IntegralValue(); ok {
		t.Fatalf("floating exposes integral")
	}
	if _, _, ok := c.LabelValue(); ok {
		t.Fatalf("floating exposes label")
	}
	if _, ok := c.StringValue(); ok {
		t.Fatalf("floating exposes string")
	}
	if v, ok := c.FloatingValue(); !ok || v != 2.5 {
		t.Fatalf("floating value = %v", v)
	}
}

func TestLabels(t *testing.T) {
	f := newFolder(abi.DeviceC32)
	b := f.Types.Builtins()
	arena := symbols.NewArena(0)
	arr := arena.New(symbols.Symbol{Kind: symbols.KindObject, Name: "tab", Type: f.Types.ArrayOf(b.Int, 8), Object: &symbols.ObjectInfo{}})
	local := arena.New(symbols.Symbol{Kind: symbols.KindObject, Name: "l", Depth: 1, Type: b.Int, Object: &symbols.ObjectInfo{}})

	p, err := f.Binary("+", f.Ref(arr), Int64(b.Int, 2))
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	sym, off, ok := p.LabelValue()
	if !ok || sym != arr.ID || off != 2 {
		t.Fatalf("tab + 2 = %v", p)
	}
	if p.Type != f.Types.PointerTo(b.Int) {
		t.Fatalf("tab + 2 has type %s", f.Types.String(p.Type))
	}
	// labels do not take part in arithmetic beyond offsetting
	if got, _ := f.Binary("*", p, Int64(b.Int, 2)); got.IsConstant() {
		t.Fatalf("label multiplied: %v", got)
	}

	addr, _ := f.Unary("&", f.Ref(local))
	if addr.IsConstant() {
		t.Fatalf("address of an automatic object is constant")
	}
	addr, _ = f.Unary("&", f.Ref(arr))
	if addr.Kind() != Label {
		t.Fatalf("address of a static object = %v", addr)
	}
}

func TestUnaryAndCast(t *testing.T) {
	f := newFolder(abi.DeviceC32)
	b := f.Types.Builtins()
	neg, _ := f.Unary("-", Int64(b.Char, 5))
	if neg.Type != b.Int || f.Display(neg) != "-5" {
		t.Fatalf("-(char)5 = %v", neg)
	}
	not, _ := f.Unary("~", Int64(b.Int, 0))
	if f.Display(not) != "-1" {
		t.Fatalf("~0 = %s", f.Display(not))
	}
	lnot, _ := f.Unary("!", Float(b.Double, 0))
	if f.Display(lnot) != "1" {
		t.Fatalf("!0.0 = %s", f.Display(lnot))
	}
	if _, err := f.Unary("~", Float(b.Double, 1)); err == nil {
		t.Fatalf("~ on double accepted")
	}

	trunc, _ := f.Cast(b.Int, Float(b.Double, -3.9))
	if f.Display(trunc) != "-3" {
		t.Fatalf("(int)-3.9 = %s", f.Display(trunc))
	}
	wide, _ := f.Cast(b.UChar, Int64(b.Int, 300))
	if v, _ := wide.IntegralValue(); v.Int64() != 300 || f.Display(wide) != "44u" {
		t.Fatalf("(uchar)300 = %v / %s", v, f.Display(wide))
	}
	fl, _ := f.Cast(b.Float, Int64(b.Int, 7))
	if v, ok := fl.FloatingValue(); !ok || v != 7 {
		t.Fatalf("(float)7 = %v", fl)
	}
}

func TestVectorSelection(t *testing.T) {
	f := newFolder(abi.DeviceOCL)
	f4, _ := f.Types.VectorOf(abi.Float, 4)
	f2, _ := f.Types.VectorOf(abi.Float, 2)
	v := EnrichedType{Type: f4, LValue: true}

	sw, err := f.Select(v, "xyzz")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sw.Type != f4 || !sw.Selection.Duplicated || sw.LValue {
		t.Fatalf(".xyzz = %+v", sw)
	}
	lo, _ := f.Select(v, "lo")
	if lo.Type != f2 || !lo.LValue || lo.Selection.Indices[1] != 1 {
		t.Fatalf(".lo = %+v", lo)
	}
	one, _ := f.Select(v, "s3")
	if one.Type != f.Types.Builtins().Float {
		t.Fatalf(".s3 has type %s", f.Types.String(one.Type))
	}
	if _, err := f.Select(v, "s9"); err == nil {
		t.Fatalf(".s9 on float4 accepted")
	}
}

func TestSizeof(t *testing.T) {
	f := newFolder(abi.DeviceOCL)
	f3, _ := f.Types.VectorOf(abi.Float, 3)
	got, err := f.Sizeof(f3)
	if err != nil {
		t.Fatalf("sizeof: %v", err)
	}
	if v, _ := got.IntegralValue(); v.Int64() != 16 || got.Type != f.Types.Scalar(abi.UInt) {
		t.Fatalf("sizeof(float3) = %v of %s", got, f.Types.String(got.Type))
	}
	if _, err := f.Sizeof(f.Types.RegisterRecord(false, "opaque")); err == nil {
		t.Fatalf("sizeof incomplete struct accepted")
	}
}
