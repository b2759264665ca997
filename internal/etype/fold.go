package etype

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"c2c/internal/abi"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

var (
	ErrDivisionByZero  = errors.New("division by zero in constant expression")
	ErrInvalidOperands = errors.New("invalid operands")
	ErrShiftCount      = errors.New("shift count out of range")
)

// maxShift bounds constant shift counts; wider shifts are left unfolded.
const maxShift = 1 << 12

// Ref annotates an identifier naming sym.
func (f *Folder) Ref(sym *symbols.Symbol) EnrichedType {
	switch sym.Kind {
	case symbols.KindEnumConst:
		return Int64(f.Types.Scalar(abi.Int), sym.EnumConst.Value)
	case symbols.KindFunction, symbols.KindMangledSet:
		return EnrichedType{Type: sym.Type, Symbol: sym.ID, Static: true}
	}
	return Object(sym.Type, sym)
}

// Sizeof folds sizeof(t) to a size_t constant; incomplete types yield an error.
func (f *Folder) Sizeof(t types.TypeID) (EnrichedType, error) {
	sizeT := f.Types.Scalar(f.ABI.SizeT)
	size, err := f.Layout.SizeOf(t)
	if err != nil {
		return Value(sizeT), err
	}
	return Int64(sizeT, int64(size)), nil
}

// Binary folds `x op y`. The result is constant only when both operands are
// and op has no side effects.
func (f *Folder) Binary(op string, x, y EnrichedType) (EnrichedType, error) {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "|=", "^=":
		if !x.LValue {
			return Value(x.Type), fmt.Errorf("%w: assignment to a non-lvalue", ErrInvalidOperands)
		}
		return Value(f.Types.Unqualified(x.Type)), nil
	case ",":
		if x.IsConstant() && y.IsConstant() {
			return y.rvalue(), nil
		}
		return Value(y.Type), nil
	}

	x, y = f.decay(x), f.decay(y)
	intT := f.Types.Scalar(abi.Int)

	if nx, ny := f.vector(x.Type), f.vector(y.Type); nx > 0 || ny > 0 {
		t := x.Type
		if nx == 0 {
			t = y.Type
		}
		if nx > 0 && ny > 0 && nx != ny {
			return Value(t), fmt.Errorf("%w: vectors of different widths", ErrInvalidOperands)
		}
		if isComparison(op) || op == "&&" || op == "||" {
			t = f.Types.EquivalentVector(f.signedLike(t), max(nx, ny))
		}
		return Value(f.Types.Unqualified(t)), nil
	}

	_, px := f.pointee(x.Type)
	_, py := f.pointee(y.Type)
	switch {
	case px || py:
		return f.pointerBinary(op, x, y, px, py)
	case op == "&&" || op == "||":
		tx, okX := x.truth()
		ty, okY := y.truth()
		if !okX || !okY || !x.IsArithmeticConstant() || !y.IsArithmeticConstant() {
			return Value(intT), nil
		}
		if op == "&&" {
			return boolean(intT, tx && ty), nil
		}
		return boolean(intT, tx || ty), nil
	}

	var t types.TypeID
	switch op {
	case "<<", ">>":
		t = f.Promote(x.Type)
		if !f.Types.IsInteger(x.Type) || !f.Types.IsInteger(y.Type) {
			return Value(t), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
		}
	default:
		t = f.UsualArithmetic(x.Type, y.Type)
		if t == types.NoTypeID {
			return Value(intT), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
		}
	}
	resultT := t
	if isComparison(op) {
		resultT = intT
	}
	if !x.IsArithmeticConstant() || !y.IsArithmeticConstant() {
		return Value(resultT), nil
	}

	if s, _ := f.scalar(t); s.IsFloating() {
		return f.foldFloat(op, t, resultT, x.asFloat(), y.asFloat())
	}
	return f.foldInt(op, resultT, x.asInt(), y.asInt())
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func boolean(t types.TypeID, v bool) EnrichedType {
	if v {
		return Int64(t, 1)
	}
	return Int64(t, 0)
}

// signedLike maps a vector type to the signed integer vector of the same
// element size, the result type of vector comparisons.
func (f *Folder) signedLike(t types.TypeID) types.TypeID {
	tt := f.Types.MustLookup(f.Types.Unqualified(t))
	size := f.ABI.SizeOf(tt.Scalar)
	for _, s := range []abi.Scalar{abi.Int, abi.Long, abi.Short, abi.Char} {
		if f.ABI.SizeOf(s) == size {
			v, err := f.Types.VectorOf(s, int(tt.Count))
			if err == nil {
				return v
			}
		}
	}
	return t
}

func (f *Folder) foldInt(op string, t types.TypeID, a, b *big.Int) (EnrichedType, error) {
	r := new(big.Int)
	switch op {
	case "+":
		r.Add(a, b)
	case "-":
		r.Sub(a, b)
	case "*":
		r.Mul(a, b)
	case "/", "%":
		if b.Sign() == 0 {
			return Value(t), ErrDivisionByZero
		}
		if op == "/" {
			r.Quo(a, b)
		} else {
			r.Rem(a, b)
		}
	case "<<", ">>":
		if b.Sign() < 0 || b.Cmp(big.NewInt(maxShift)) > 0 {
			return Value(t), ErrShiftCount
		}
		if op == "<<" {
			r.Lsh(a, uint(b.Uint64()))
		} else {
			r.Rsh(a, uint(b.Uint64()))
		}
	case "&":
		r.And(a, b)
	case "|":
		r.Or(a, b)
	case "^":
		r.Xor(a, b)
	case "==", "!=", "<", ">", "<=", ">=":
		return boolean(t, compare(op, a.Cmp(b))), nil
	default:
		return Value(t), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
	}
	return Int(t, r), nil
}

func (f *Folder) foldFloat(op string, t, resultT types.TypeID, a, b float64) (EnrichedType, error) {
	switch op {
	case "+":
		return Float(t, a+b), nil
	case "-":
		return Float(t, a-b), nil
	case "*":
		return Float(t, a*b), nil
	case "/":
		if b == 0 {
			return Value(t), ErrDivisionByZero
		}
		return Float(t, a/b), nil
	case "==", "!=", "<", ">", "<=", ">=":
		c := 0
		switch {
		case math.IsNaN(a) || math.IsNaN(b):
			return boolean(resultT, op == "!="), nil
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
		return boolean(resultT, compare(op, c)), nil
	}
	return Value(t), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
}

func compare(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	}
	return c >= 0
}

// pointerBinary handles pointer arithmetic. Labels move by whole elements;
// nothing else about an address is known before link time.
func (f *Folder) pointerBinary(op string, x, y EnrichedType, px, py bool) (EnrichedType, error) {
	intT := f.Types.Scalar(abi.Int)
	switch {
	case isComparison(op):
		if x.kind == Label && y.kind == Label && x.label == y.label {
			return boolean(intT, compare(op, x.ival.Cmp(y.ival))), nil
		}
		return Value(intT), nil
	case op == "&&" || op == "||":
		return Value(intT), nil
	case px && py && op == "-":
		diffT := f.Types.Scalar(f.ABI.PtrdiffT)
		if x.kind == Label && y.kind == Label && x.label == y.label {
			return Int(diffT, new(big.Int).Sub(x.ival, y.ival)), nil
		}
		return Value(diffT), nil
	case px && !py && (op == "+" || op == "-"), py && !px && op == "+":
		ptr, off := x, y
		if py {
			ptr, off = y, x
		}
		if !f.Types.IsInteger(off.Type) {
			return Value(ptr.Type), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
		}
		if ptr.kind != Label || off.kind != Integral {
			return Value(f.Types.Unqualified(ptr.Type)), nil
		}
		delta := new(big.Int).Set(off.ival)
		if op == "-" {
			delta.Neg(delta)
		}
		out := ptr.rvalue()
		out.ival = new(big.Int).Add(ptr.ival, delta)
		return out, nil
	}
	return Value(x.Type), fmt.Errorf("%w to %s", ErrInvalidOperands, op)
}

// Unary folds a prefix or postfix operator.
func (f *Folder) Unary(op string, x EnrichedType) (EnrichedType, error) {
	switch op {
	case "&":
		if !x.LValue && f.Types.Kind(x.Type) != types.KindFunction {
			return Value(f.Types.PointerTo(x.Type)), fmt.Errorf("%w: address of a non-lvalue", ErrInvalidOperands)
		}
		ptr := f.Types.PointerTo(x.Type)
		if x.Static && x.Symbol.IsValid() && x.Selection == nil {
			return LabelOf(ptr, x.Symbol, 0), nil
		}
		return Value(ptr), nil
	case "*":
		x = f.decay(x)
		elem, ok := f.pointee(x.Type)
		if !ok {
			return Value(x.Type), fmt.Errorf("%w: indirection through a non-pointer", ErrInvalidOperands)
		}
		return EnrichedType{Type: elem, LValue: true}, nil
	case "++", "--", "post++", "post--":
		if !x.LValue {
			return Value(x.Type), fmt.Errorf("%w: increment of a non-lvalue", ErrInvalidOperands)
		}
		return Value(f.Types.Unqualified(x.Type)), nil
	}

	x = f.decay(x)
	if f.vector(x.Type) > 0 {
		return Value(f.Types.Unqualified(x.Type)), nil
	}
	intT := f.Types.Scalar(abi.Int)
	switch op {
	case "!":
		if v, ok := x.truth(); ok && x.IsArithmeticConstant() {
			return boolean(intT, !v), nil
		}
		return Value(intT), nil
	case "+", "-":
		t := f.Promote(x.Type)
		if !f.Types.IsArithmetic(x.Type) {
			return Value(t), fmt.Errorf("%w to unary %s", ErrInvalidOperands, op)
		}
		switch {
		case x.kind == Integral && op == "-":
			return Int(t, new(big.Int).Neg(x.ival)), nil
		case x.kind == Floating && op == "-":
			return Float(t, -x.fval), nil
		case x.IsArithmeticConstant():
			return x.withType(t), nil
		}
		return Value(t), nil
	case "~":
		t := f.Promote(x.Type)
		if !f.Types.IsInteger(x.Type) {
			return Value(t), fmt.Errorf("%w to unary ~", ErrInvalidOperands)
		}
		if x.kind == Integral {
			return Int(t, new(big.Int).Not(x.ival)), nil
		}
		return Value(t), nil
	}
	return Value(x.Type), fmt.Errorf("%w: unknown operator %s", ErrInvalidOperands, op)
}

// Cast converts x to t. Integral values keep full precision; truncation to
// the destination width happens only when rendering.
func (f *Folder) Cast(t types.TypeID, x EnrichedType) (EnrichedType, error) {
	tk := f.Types.Kind(t)
	if tk == types.KindVoid {
		return Value(t), nil
	}
	x = f.decay(x)
	switch tk {
	case types.KindBool:
		if v, ok := x.truth(); ok && x.IsArithmeticConstant() {
			return boolean(t, v), nil
		}
		return Value(t), nil
	case types.KindInt, types.KindEnum:
		switch x.kind {
		case Integral, Floating:
			return Int(t, x.asInt()), nil
		case Label:
			if f.ABI.SizeOf(f.ABI.IntptrT) <= f.ABI.SizeOf(mustScalar(f, t)) {
				return x.withType(t), nil
			}
		}
		return Value(t), nil
	case types.KindFloat:
		if x.IsArithmeticConstant() {
			return Float(t, x.asFloat()), nil
		}
		return Value(t), nil
	case types.KindPointer:
		switch x.kind {
		case Integral, Label, String:
			return x.withType(t), nil
		}
		return Value(t), nil
	case types.KindVector:
		// (float4)(1.0f) broadcasts; the literal itself is built by package literal
		return Value(t), nil
	}
	return Value(t), fmt.Errorf("%w: cast to %s", ErrInvalidOperands, f.Types.String(t))
}

func mustScalar(f *Folder, t types.TypeID) abi.Scalar {
	s, _ := f.scalar(t)
	return s
}

// Select annotates a vector element selection `x.sel`.
func (f *Folder) Select(x EnrichedType, sel string) (EnrichedType, error) {
	n := f.vector(x.Type)
	if n == 0 {
		return Value(types.NoTypeID), fmt.Errorf("%w: selection on a non-vector", ErrInvalidOperands)
	}
	s, err := types.ParseSelection(n, sel)
	if err != nil {
		return Value(types.NoTypeID), err
	}
	t := f.Types.EquivalentVector(x.Type, len(s.Indices))
	if t == types.NoTypeID {
		return Value(t), fmt.Errorf("%w: selection of %d elements", ErrInvalidOperands, len(s.Indices))
	}
	return EnrichedType{
		Type:      t,
		LValue:    x.LValue && !s.Duplicated,
		Symbol:    x.Symbol,
		Selection: &s,
	}, nil
}
