package types

import (
	"testing"

	"c2c/internal/abi"
)

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if in.PointerTo(b.Int) != in.PointerTo(b.Int) {
		t.Fatalf("pointer types should be deduplicated")
	}
	if in.ArrayOf(b.Int, 3) == in.ArrayOf(b.Int, 4) {
		t.Fatalf("arrays of different length must differ")
	}
	f1 := in.Func(FuncInfo{Result: b.Int, Params: []TypeID{b.Int, b.CharPtr}})
	f2 := in.Func(FuncInfo{Result: b.Int, Params: []TypeID{b.Int, b.CharPtr}})
	if f1 != f2 {
		t.Fatalf("identical function types should share an id")
	}
	if in.Unqualified(in.Qualified(b.Int, QualConst, SpaceNone)) != b.Int {
		t.Fatalf("unqualified const int must be int")
	}
}

func TestSignatures(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f4, _ := in.VectorOf(abi.Float, 4)
	s := in.RegisterRecord(false, "pair")

	cases := []struct {
		id   TypeID
		want string
	}{
		{b.UChar, "h"},
		{b.ULong, "m"},
		{in.PointerTo(b.Char), "Pc"},
		{in.ArrayOf(b.Int, 3), "Pi"},
		{f4, "V4f"},
		{s, "4pair"},
		{in.Func(FuncInfo{Result: b.Void, VoidList: true}), "FvvE"},
		{in.Func(FuncInfo{Result: b.Int, Unspecified: true}), "Fi*E"},
		{in.Func(FuncInfo{Result: b.Int, Params: []TypeID{b.Float, b.Double}}), "FifdE"},
	}
	for _, tc := range cases {
		if got := in.Signature(tc.id); got != tc.want {
			t.Fatalf("Signature(%s)=%q want %q", in.String(tc.id), got, tc.want)
		}
	}

	fn := in.Func(FuncInfo{Result: b.Float, Params: []TypeID{in.Qualified(f4, QualConst, SpaceGlobal), b.Int}})
	if got := in.ParamSignature(fn); got != "V4fi" {
		t.Fatalf("ParamSignature=%q want V4fi", got)
	}
	if got := in.ParamSignature(in.Func(FuncInfo{Result: b.Int, VoidList: true})); got != "" {
		t.Fatalf("ParamSignature(void)=%q want empty", got)
	}
}

func TestEquivalentVector(t *testing.T) {
	in := NewInterner()
	f4, _ := in.VectorOf(abi.Float, 4)
	f2 := in.EquivalentVector(f4, 2)
	if tt := in.MustLookup(f2); tt.Kind != KindVector || tt.Count != 2 || tt.Scalar != abi.Float {
		t.Fatalf("unexpected equivalent %s", in.String(f2))
	}
	if in.EquivalentVector(f4, 1) != in.Builtins().Float {
		t.Fatalf("n=1 must yield the scalar")
	}
	if in.EquivalentVector(f4, 5) != NoTypeID {
		t.Fatalf("n=5 must yield nothing")
	}
}

func TestParseSelection(t *testing.T) {
	cases := []struct {
		n    int
		sel  string
		want []int
		dup  bool
	}{
		{4, "xyzz", []int{0, 1, 2, 2}, true},
		{16, "s0aF", []int{0, 10, 15}, false},
		{3, "lo", []int{0, 1}, false},
		{3, "hi", []int{2, 3}, false},
		{8, "odd", []int{1, 3, 5, 7}, false},
		{4, "even", []int{0, 2}, false},
	}
	for _, tc := range cases {
		got, err := ParseSelection(tc.n, tc.sel)
		if err != nil {
			t.Fatalf("ParseSelection(%d,%q): %v", tc.n, tc.sel, err)
		}
		if len(got.Indices) != len(tc.want) || got.Duplicated != tc.dup {
			t.Fatalf("ParseSelection(%d,%q)=%+v", tc.n, tc.sel, got)
		}
		for i := range tc.want {
			if got.Indices[i] != tc.want[i] {
				t.Fatalf("ParseSelection(%d,%q)=%v want %v", tc.n, tc.sel, got.Indices, tc.want)
			}
		}
	}
	if _, err := ParseSelection(2, "z"); err == nil {
		t.Fatalf("expected out-of-range error for .z on a 2-vector")
	}
	if _, err := ParseSelection(4, "xq"); err == nil {
		t.Fatalf("expected error for invalid component")
	}
}

func TestFunctionManglingEquivalence(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f4, _ := in.VectorOf(abi.Float, 4)
	f2, _ := in.VectorOf(abi.Float, 2)
	i4, _ := in.VectorOf(abi.Int, 4)

	ov4 := in.Func(FuncInfo{Result: f4, Params: []TypeID{f4}})
	call2 := in.Func(FuncInfo{Result: b.Void, Params: []TypeID{f2}})
	call4 := in.Func(FuncInfo{Result: b.Void, Params: []TypeID{f4}})
	callI := in.Func(FuncInfo{Result: b.Void, Params: []TypeID{i4}})
	unspecified := in.Func(FuncInfo{Result: b.Int, Unspecified: true})
	voidList := in.Func(FuncInfo{Result: b.Int, VoidList: true})

	if !in.EquivalentForMangling(ov4, call4) {
		t.Fatalf("result must not discriminate")
	}
	if in.EquivalentForMangling(ov4, call2) || in.EquivalentForMangling(ov4, callI) {
		t.Fatalf("width and base type must match")
	}
	if !in.EquivalentForMangling(unspecified, ov4) {
		t.Fatalf("unspecified list is compatible with anything")
	}
	if in.EquivalentForMangling(voidList, ov4) || !in.EquivalentForMangling(voidList, voidList) {
		t.Fatalf("void list only matches a void list")
	}
}

func TestCompatibleDeclarations(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !in.Compatible(in.ArrayOf(b.Int, ArrayUnsized), in.ArrayOf(b.Int, 3)) {
		t.Fatalf("unsized array must be compatible with a sized one")
	}
	if in.Compatible(in.ArrayOf(b.Int, 2), in.ArrayOf(b.Int, 3)) {
		t.Fatalf("arrays of different sizes are incompatible")
	}
	if in.Compatible(b.Int, b.Float) {
		t.Fatalf("int and float are incompatible")
	}

	a := in.RegisterRecord(false, "S")
	c := in.RegisterRecord(false, "S")
	in.CompleteRecord(a, []Field{{Name: "x", Type: b.Int}})
	if !in.Compatible(a, c) {
		t.Fatalf("incomplete struct S is compatible with complete struct S of another module")
	}
	in.CompleteRecord(c, []Field{{Name: "y", Type: b.Int}})
	if in.Compatible(a, c) {
		t.Fatalf("structs with different members are incompatible")
	}
}

func TestDeclarator(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f4, _ := in.VectorOf(abi.Float, 4)
	fp := in.PointerTo(in.Func(FuncInfo{Result: b.Int, Params: []TypeID{b.Int}}))
	cases := []struct {
		id   TypeID
		name string
		want string
	}{
		{b.Int, "x", "int x"},
		{in.PointerTo(b.Char), "p", "char *p"},
		{in.ArrayOf(b.Int, 3), "a", "int a[3]"},
		{in.ArrayOf(in.PointerTo(b.Char), ArrayUnsized), "argv", "char *argv[]"},
		{fp, "fp", "int (*fp)(int)"},
		{f4, "v", "float4 v"},
		{in.Qualified(b.Int, QualConst, SpaceNone), "k", "const int k"},
	}
	for _, tc := range cases {
		if got := in.Declarator(tc.id, tc.name); got != tc.want {
			t.Fatalf("Declarator=%q want %q", got, tc.want)
		}
	}
}
