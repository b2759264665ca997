package etype

import (
	"c2c/internal/abi"
	"c2c/internal/layout"
	"c2c/internal/types"
)

// Folder types and folds expressions against one ABI.
type Folder struct {
	ABI    *abi.ABI
	Types  *types.Interner
	Layout *layout.LayoutEngine
}

// NewFolder binds a folder to the source ABI of a compilation.
func NewFolder(a *abi.ABI, in *types.Interner) *Folder {
	return &Folder{ABI: a, Types: in, Layout: layout.New(a, in)}
}

// scalar returns the arithmetic scalar behind t; enums count as int.
func (f *Folder) scalar(t types.TypeID) (abi.Scalar, bool) {
	tt, ok := f.Types.Lookup(f.Types.Unqualified(t))
	if !ok {
		return abi.ScalarInvalid, false
	}
	switch tt.Kind {
	case types.KindBool, types.KindInt, types.KindFloat:
		return tt.Scalar, true
	case types.KindEnum:
		return abi.Int, true
	}
	return abi.ScalarInvalid, false
}

// Promote applies the integer promotions: types ranked below int become int
// when int holds all their values, unsigned int otherwise.
func (f *Folder) Promote(t types.TypeID) types.TypeID {
	s, ok := f.scalar(t)
	if !ok || s.IsFloating() {
		return f.Types.Unqualified(t)
	}
	return f.Types.Scalar(f.promote(s))
}

func (f *Folder) promote(s abi.Scalar) abi.Scalar {
	if s.Rank() >= abi.Int.Rank() {
		return s
	}
	if f.ABI.Bits(s) < f.ABI.Bits(abi.Int) || s.IsSigned() {
		return abi.Int
	}
	return abi.UInt
}

// UsualArithmetic returns the common type of two arithmetic operands.
func (f *Folder) UsualArithmetic(a, b types.TypeID) types.TypeID {
	sa, okA := f.scalar(a)
	sb, okB := f.scalar(b)
	if !okA || !okB {
		return types.NoTypeID
	}
	return f.Types.Scalar(f.common(sa, sb))
}

func (f *Folder) common(a, b abi.Scalar) abi.Scalar {
	for _, fl := range []abi.Scalar{abi.LongDouble, abi.Double, abi.Float} {
		if a == fl || b == fl {
			return fl
		}
	}
	a, b = f.promote(a), f.promote(b)
	if a == b {
		return a
	}
	if a.IsSigned() == b.IsSigned() {
		if a.Rank() >= b.Rank() {
			return a
		}
		return b
	}
	u, s := a, b
	if a.IsSigned() {
		u, s = b, a
	}
	switch {
	case u.Rank() >= s.Rank():
		return u
	case f.ABI.Bits(s) > f.ABI.Bits(u):
		return s
	}
	return s.Unsigned()
}

// vector returns the element count of a vector type, 0 otherwise.
func (f *Folder) vector(t types.TypeID) int {
	tt, ok := f.Types.Lookup(f.Types.Unqualified(t))
	if !ok || tt.Kind != types.KindVector {
		return 0
	}
	return int(tt.Count)
}

// decay converts array and function operands to pointers; static arrays
// and functions become link-time labels.
func (f *Folder) decay(e EnrichedType) EnrichedType {
	tt, ok := f.Types.Lookup(f.Types.Unqualified(e.Type))
	if !ok {
		return e
	}
	var ptr types.TypeID
	switch tt.Kind {
	case types.KindArray:
		ptr = f.Types.PointerTo(tt.Elem)
	case types.KindFunction:
		ptr = f.Types.PointerTo(e.Type)
	default:
		return e
	}
	if e.kind == String {
		return e.withType(ptr)
	}
	if e.Symbol.IsValid() && (e.Static || tt.Kind == types.KindFunction) {
		return LabelOf(ptr, e.Symbol, 0)
	}
	return Value(ptr)
}

func (f *Folder) pointee(t types.TypeID) (types.TypeID, bool) {
	tt, ok := f.Types.Lookup(f.Types.Unqualified(t))
	if !ok || tt.Kind != types.KindPointer {
		return types.NoTypeID, false
	}
	return tt.Elem, true
}
