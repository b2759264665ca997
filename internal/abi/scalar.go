package abi

import "fmt"

// Scalar enumerates primitive C types whose size and alignment come from an ABI.
type Scalar uint8

const (
	ScalarInvalid Scalar = iota
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
	Pointer

	scalarCount
)

var scalarNames = [...]string{
	ScalarInvalid: "<invalid>",
	Bool:          "_Bool",
	Char:          "char",
	SChar:         "signed char",
	UChar:         "unsigned char",
	Short:         "short",
	UShort:        "unsigned short",
	Int:           "int",
	UInt:          "unsigned int",
	Long:          "long",
	ULong:         "unsigned long",
	LongLong:      "long long",
	ULongLong:     "unsigned long long",
	Float:         "float",
	Double:        "double",
	LongDouble:    "long double",
	Pointer:       "void *",
}

func (s Scalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return fmt.Sprintf("Scalar(%d)", s)
}

// IsInteger reports integral scalars (bool and char included).
func (s Scalar) IsInteger() bool {
	return s >= Bool && s <= ULongLong
}

func (s Scalar) IsFloating() bool {
	return s == Float || s == Double || s == LongDouble
}

func (s Scalar) IsArithmetic() bool {
	return s.IsInteger() || s.IsFloating()
}

// IsSigned reports whether the integral scalar is signed. Plain char is signed.
func (s Scalar) IsSigned() bool {
	switch s {
	case Char, SChar, Short, Int, Long, LongLong:
		return true
	}
	return false
}

// Rank is the integer conversion rank (C11 6.3.1.1).
func (s Scalar) Rank() int {
	switch s {
	case Bool:
		return 1
	case Char, SChar, UChar:
		return 2
	case Short, UShort:
		return 3
	case Int, UInt:
		return 4
	case Long, ULong:
		return 5
	case LongLong, ULongLong:
		return 6
	}
	return 0
}

// Unsigned returns the unsigned counterpart of an integral scalar.
func (s Scalar) Unsigned() Scalar {
	switch s {
	case Char, SChar:
		return UChar
	case Short:
		return UShort
	case Int:
		return UInt
	case Long:
		return ULong
	case LongLong:
		return ULongLong
	}
	return s
}
