package abi

import (
	"fmt"
	"math/big"
)

// Entry holds the size and alignment of one scalar, in bytes.
// Size < 0 marks a type the device does not support.
type Entry struct {
	Size  int
	Align int
}

// Supported reports whether the device provides the scalar.
func (e Entry) Supported() bool { return e.Size > 0 }

// ABI is the immutable size/alignment/limit table of one device profile.
type ABI struct {
	Device Device
	Name   string

	entries [scalarCount]Entry

	SizeT    Scalar
	PtrdiffT Scalar
	IntptrT  Scalar
	UintptrT Scalar
}

// Of returns the size/alignment entry of a scalar.
func (a *ABI) Of(s Scalar) Entry {
	if a == nil || s == ScalarInvalid || s >= scalarCount {
		return Entry{Size: -1, Align: -1}
	}
	return a.entries[s]
}

func (a *ABI) SizeOf(s Scalar) int  { return a.Of(s).Size }
func (a *ABI) AlignOf(s Scalar) int { return a.Of(s).Align }

// Supports reports whether the device provides the scalar at all.
func (a *ABI) Supports(s Scalar) bool { return a.Of(s).Supported() }

func (a *ABI) LongLongAllowed() bool   { return a.Supports(LongLong) }
func (a *ABI) DoubleAllowed() bool     { return a.Supports(Double) }
func (a *ABI) LongDoubleAllowed() bool { return a.Supports(LongDouble) }

// Bits returns the width of an integral scalar in bits.
func (a *ABI) Bits(s Scalar) uint {
	if s == Bool {
		return 1
	}
	size := a.SizeOf(s)
	if size <= 0 {
		return 0
	}
	return uint(size) * 8
}

// Min returns the smallest value of an integral scalar. The result is a fresh copy.
func (a *ABI) Min(s Scalar) *big.Int {
	if !s.IsInteger() || !s.IsSigned() {
		return new(big.Int)
	}
	bits := a.Bits(s)
	if bits == 0 {
		return new(big.Int)
	}
	v := new(big.Int).Lsh(big.NewInt(1), bits-1)
	return v.Neg(v)
}

// Max returns the largest value of an integral scalar. The result is a fresh copy.
func (a *ABI) Max(s Scalar) *big.Int {
	if !s.IsInteger() {
		return new(big.Int)
	}
	bits := a.Bits(s)
	if bits == 0 {
		return new(big.Int)
	}
	if s.IsSigned() {
		bits--
	}
	v := new(big.Int).Lsh(big.NewInt(1), bits)
	return v.Sub(v, big.NewInt(1))
}

// Fits reports whether v is representable in the integral scalar.
func (a *ABI) Fits(s Scalar, v *big.Int) bool {
	return v.Cmp(a.Min(s)) >= 0 && v.Cmp(a.Max(s)) <= 0
}

// Wrap truncates v to the width of s (two's complement). Used only when
// rendering a value; folding keeps full precision.
func (a *ABI) Wrap(s Scalar, v *big.Int) *big.Int {
	bits := a.Bits(s)
	if bits == 0 {
		return new(big.Int).Set(v)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	out := new(big.Int).Mod(v, mod)
	if s.IsSigned() && out.Cmp(a.Max(s)) > 0 {
		out.Sub(out, mod)
	}
	return out
}

func (a *ABI) String() string {
	if a == nil {
		return "<nil abi>"
	}
	return fmt.Sprintf("abi(%s)", a.Name)
}
