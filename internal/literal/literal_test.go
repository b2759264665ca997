package literal

import (
	"testing"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/etype"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

func intLit(in *types.Interner, v int64) *Expr {
	return NewExpr(ast.NoNodeID, etype.Int64(in.Builtins().Int, v), "e"+string(rune('0'+v)))
}

func TestAggregateOfThreeInts(t *testing.T) {
	in := types.NewInterner()
	arr := in.ArrayOf(in.Builtins().Int, 3)

	a := NewAggregate(in, arr, ast.NoNodeID)
	for i := int64(0); i < 3; i++ {
		a.AddAt(int(i), intLit(in, i))
	}
	if !a.IsConstant() {
		t.Fatalf("three constants are not constant")
	}
	if got := a.String(); got != "{e0, e1, e2}" {
		t.Fatalf("String=%q", got)
	}

	b := NewAggregate(in, arr, ast.NoNodeID)
	b.Add(intLit(in, 0))
	b.Add(NewExpr(ast.NoNodeID, etype.Value(in.Builtins().Int), "x"))
	b.Add(intLit(in, 2))
	if b.IsConstant() {
		t.Fatalf("aggregate with a variable element is constant")
	}
}

// AtIndex must return the element stored at the requested position, not the
// first one.
func TestAggregateAtIndexReturnsStoredElement(t *testing.T) {
	in := types.NewInterner()
	a := NewAggregate(in, in.ArrayOf(in.Builtins().Int, 3), ast.NoNodeID)
	e0, e1, e2 := intLit(in, 0), intLit(in, 1), intLit(in, 2)
	a.Add(e0)
	a.Add(e1)
	a.Add(e2)
	for i, want := range []Literal{e0, e1, e2} {
		if got := a.AtIndex(i); got != want {
			t.Fatalf("AtIndex(%d)=%v want %v", i, got, want)
		}
	}
	if a.AtIndex(3) != nil || a.AtIndex(-1) != nil {
		t.Fatalf("out of range index returned an element")
	}
}

func TestAggregateSparseAndGrowing(t *testing.T) {
	in := types.NewInterner()
	a := NewAggregate(in, in.ArrayOf(in.Builtins().Int, types.ArrayUnsized), ast.NoNodeID)
	if a.Len() != 0 {
		t.Fatalf("unsized array starts with %d elements", a.Len())
	}
	a.AddAt(2, intLit(in, 2))
	a.Add(intLit(in, 3))
	if got := a.String(); got != "{<null>, <null>, e2, e3}" {
		t.Fatalf("String=%q", got)
	}
	a.AddRange(5, 6, intLit(in, 7))
	if a.Len() != 7 || a.Next() != 7 || a.AtIndex(5) != a.AtIndex(6) {
		t.Fatalf("range designator: len=%d next=%d", a.Len(), a.Next())
	}

	st := in.RegisterRecord(false, "pt")
	in.CompleteRecord(st, []types.Field{{Name: "x", Type: in.Builtins().Int}, {Name: "y", Type: in.Builtins().Int}})
	if got := NewAggregate(in, st, ast.NoNodeID).String(); got != "{<null>, <null>}" {
		t.Fatalf("struct literal String=%q", got)
	}
}

func TestVectorClassification(t *testing.T) {
	in := types.NewInterner()
	f4, _ := in.VectorOf(abi.Float, 4)
	f2, _ := in.VectorOf(abi.Float, 2)
	one := NewExpr(ast.NoNodeID, etype.Float(in.Builtins().Float, 1), "1.0f")

	scalar := NewVector(in, f4, ast.NoNodeID)
	scalar.Add(one)
	if !scalar.IsScalarDefined() || scalar.IsComplexDefined() || scalar.IsElementwise() {
		t.Fatalf("broadcast literal misclassified")
	}

	elems := NewVector(in, f4, ast.NoNodeID)
	for i := 0; i < 4; i++ {
		elems.Add(one)
	}
	if !elems.IsElementwise() || elems.IsComplexDefined() || elems.Definitions() != 4 {
		t.Fatalf("elementwise literal misclassified")
	}
	if got := elems.String(); got != "Vector = {1.0f, 1.0f, 1.0f, 1.0f}" {
		t.Fatalf("String=%q", got)
	}

	mixed := NewVector(in, f4, ast.NoNodeID)
	sub := NewVectorSub(in, ast.NoNodeID, etype.Value(f2), "a.xy")
	mixed.AddSub(sub)
	mixed.Add(one)
	mixed.Add(one)
	if mixed.Definitions() != 3 || !mixed.IsComplexDefined() || mixed.IsConstant() {
		t.Fatalf("complex literal misclassified: defs=%d", mixed.Definitions())
	}
	if mixed.AtIndex(0) != sub || mixed.AtIndex(1) != sub || mixed.AtIndex(2) != one {
		t.Fatalf("sub-vector does not span two positions: %s", mixed)
	}
}

func TestDescribe(t *testing.T) {
	in := types.NewInterner()
	e := intLit(in, 1)
	if got := Describe(e); got != "e1, compile-time constant, [no parent]" {
		t.Fatalf("Describe=%q", got)
	}
	e.SetParents([]symbols.SymbolID{4, 9})
	if got := Describe(e); got != "e1, compile-time constant, parents=[4 9]" {
		t.Fatalf("Describe=%q", got)
	}
}
