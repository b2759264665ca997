// Package etype attaches a resolved type and, when derivable, a compile-time
// constant to expression nodes, and folds constants through operators.
package etype

import (
	"fmt"
	"math"
	"math/big"

	"c2c/internal/symbols"
	"c2c/internal/types"
)

// ConstKind classifies the constant carried by an EnrichedType.
type ConstKind uint8

const (
	NotConstant ConstKind = iota
	Integral
	Floating
	// Label is an address known only at link time (a symbol plus an offset).
	Label
	String
)

func (k ConstKind) String() string {
	switch k {
	case Integral:
		return "integral"
	case Floating:
		return "floating"
	case Label:
		return "label"
	case String:
		return "string"
	}
	return "none"
}

// EnrichedType is the annotation of one expression node. Exactly one of the
// value fields is meaningful, selected by kind; a non-constant exposes none.
type EnrichedType struct {
	Type types.TypeID

	// LValue: the expression designates an object.
	LValue bool
	// Static: the designated object is allocated at compile time.
	Static bool
	// Symbol is the declaration the expression names, if any.
	Symbol symbols.SymbolID
	// Selection is set for vector element selections.
	Selection *types.Selection

	kind  ConstKind
	ival  *big.Int // integral value, label offset in elements
	fval  float64
	sval  string
	label symbols.SymbolID
}

// Value is a non-constant rvalue of type t.
func Value(t types.TypeID) EnrichedType { return EnrichedType{Type: t} }

// Int is an integral constant. v is copied.
func Int(t types.TypeID, v *big.Int) EnrichedType {
	return EnrichedType{Type: t, kind: Integral, ival: new(big.Int).Set(v)}
}

// Int64 is a shorthand for small integral constants.
func Int64(t types.TypeID, v int64) EnrichedType {
	return EnrichedType{Type: t, kind: Integral, ival: big.NewInt(v)}
}

// Float is a floating constant.
func Float(t types.TypeID, f float64) EnrichedType {
	return EnrichedType{Type: t, kind: Floating, fval: f}
}

// LabelOf is the address of sym plus offset elements.
func LabelOf(t types.TypeID, sym symbols.SymbolID, offset int64) EnrichedType {
	return EnrichedType{Type: t, kind: Label, label: sym, ival: big.NewInt(offset), Symbol: sym}
}

// Str is a string literal constant.
func Str(t types.TypeID, s string) EnrichedType {
	return EnrichedType{Type: t, kind: String, sval: s}
}

// Object designates a declared object.
func Object(t types.TypeID, sym *symbols.Symbol) EnrichedType {
	return EnrichedType{
		Type:   t,
		LValue: true,
		Static: sym.ReferencesCompileTimeAllocatedEntity(),
		Symbol: sym.ID,
	}
}

func (e EnrichedType) Kind() ConstKind  { return e.kind }
func (e EnrichedType) IsConstant() bool { return e.kind != NotConstant }

// IsArithmeticConstant reports integral and floating constants, the only
// kinds arithmetic folds through.
func (e EnrichedType) IsArithmeticConstant() bool {
	return e.kind == Integral || e.kind == Floating
}

// IntegralValue returns a copy of the integral value.
func (e EnrichedType) IntegralValue() (*big.Int, bool) {
	if e.kind != Integral {
		return nil, false
	}
	return new(big.Int).Set(e.ival), true
}

func (e EnrichedType) FloatingValue() (float64, bool) {
	if e.kind != Floating {
		return 0, false
	}
	return e.fval, true
}

// LabelValue returns the labelled symbol and the element offset.
func (e EnrichedType) LabelValue() (symbols.SymbolID, int64, bool) {
	if e.kind != Label {
		return symbols.NoSymbolID, 0, false
	}
	return e.label, e.ival.Int64(), true
}

func (e EnrichedType) StringValue() (string, bool) {
	if e.kind != String {
		return "", false
	}
	return e.sval, true
}

// withType returns e retyped as t, keeping its constant.
func (e EnrichedType) withType(t types.TypeID) EnrichedType {
	e.Type = t
	e.LValue, e.Static = false, false
	e.Selection = nil
	return e
}

// rvalue drops the lvalue classification, as reading an object does.
func (e EnrichedType) rvalue() EnrichedType {
	e.LValue, e.Static = false, false
	return e
}

// truth is the boolean value of an arithmetic constant.
func (e EnrichedType) truth() (bool, bool) {
	switch e.kind {
	case Integral:
		return e.ival.Sign() != 0, true
	case Floating:
		return e.fval != 0, true
	case Label, String:
		// addresses of objects are never null
		return true, true
	}
	return false, false
}

// asFloat converts an arithmetic constant to float64.
func (e EnrichedType) asFloat() float64 {
	if e.kind == Floating {
		return e.fval
	}
	f, _ := new(big.Float).SetInt(e.ival).Float64()
	return f
}

// asInt converts an arithmetic constant to an integer, truncating floats
// toward zero.
func (e EnrichedType) asInt() *big.Int {
	if e.kind == Integral {
		return new(big.Int).Set(e.ival)
	}
	if math.IsNaN(e.fval) || math.IsInf(e.fval, 0) {
		return new(big.Int)
	}
	i, _ := big.NewFloat(e.fval).Int(nil)
	return i
}

func (e EnrichedType) String() string {
	switch e.kind {
	case Integral:
		return fmt.Sprintf("integral %s", e.ival)
	case Floating:
		return fmt.Sprintf("floating %g", e.fval)
	case Label:
		return fmt.Sprintf("label %d%+d", e.label, e.ival.Int64())
	case String:
		return fmt.Sprintf("string %q", e.sval)
	}
	if e.LValue {
		return "lvalue"
	}
	return "value"
}
