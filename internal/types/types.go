package types

import (
	"fmt"

	"c2c/internal/abi"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindFunction
	KindStruct
	KindUnion
	KindEnum
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindVector:
		return "vector"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Qual is a set of C type qualifiers.
type Qual uint8

const (
	QualConst Qual = 1 << iota
	QualVolatile
	QualRestrict
)

// AddrSpace is an OpenCL address-space qualifier.
type AddrSpace uint8

const (
	SpaceNone AddrSpace = iota
	SpaceGlobal
	SpaceLocal
	SpaceConstant
	SpacePrivate
)

func (s AddrSpace) keyword() string {
	switch s {
	case SpaceGlobal:
		return "__global"
	case SpaceLocal:
		return "__local"
	case SpaceConstant:
		return "__constant"
	case SpacePrivate:
		return "__private"
	}
	return ""
}

func (s AddrSpace) signature() string {
	switch s {
	case SpaceGlobal:
		return "g"
	case SpaceLocal:
		return "l"
	case SpaceConstant:
		return "c"
	case SpacePrivate:
		return "p"
	}
	return ""
}

// ArrayUnsized marks an array whose length is not known yet (`int a[]`).
const ArrayUnsized = ^uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Scalar  abi.Scalar // arithmetic kinds, enums (underlying int) and vector element
	Elem    TypeID     // pointer target, array and vector element
	Count   uint32     // array length (ArrayUnsized) or vector width
	Qual    Qual
	Space   AddrSpace
	Payload uint32 // slot in records/enums/funcs
}

// IsQualified reports whether the descriptor carries any qualifier.
func (t Type) IsQualified() bool {
	return t.Qual != 0 || t.Space != SpaceNone
}

// MakePointer constructs a pointer descriptor.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem, Scalar: abi.Pointer}
}

// MakeArray constructs an array descriptor; count may be ArrayUnsized.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}
