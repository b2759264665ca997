package types

import (
	"fmt"

	"c2c/internal/abi"
)

const intScalar = abi.Int

// ValidVectorWidth reports whether n is an OpenCL vector width.
func ValidVectorWidth(n int) bool {
	switch n {
	case 2, 3, 4, 8, 16:
		return true
	}
	return false
}

// PhysicalWidth is the storage width of an n-element vector (3 is padded to 4).
func PhysicalWidth(n int) int {
	if n == 3 {
		return 4
	}
	return n
}

// ValidVectorBase reports whether s may be a vector element type.
func ValidVectorBase(s abi.Scalar) bool {
	switch s {
	case abi.Char, abi.SChar, abi.UChar, abi.Short, abi.UShort, abi.Int, abi.UInt,
		abi.Long, abi.ULong, abi.Float, abi.Double:
		return true
	}
	return false
}

// VectorOf interns `base<n>`.
func (in *Interner) VectorOf(base abi.Scalar, n int) (TypeID, error) {
	if !ValidVectorBase(base) {
		return NoTypeID, fmt.Errorf("invalid vector element type %s", base)
	}
	if !ValidVectorWidth(n) {
		return NoTypeID, fmt.Errorf("invalid vector width %d", n)
	}
	if base == abi.SChar {
		base = abi.Char
	}
	elem := in.Scalar(base)
	return in.Intern(Type{Kind: KindVector, Scalar: base, Elem: elem, Count: uint32(n)}), nil
}

// EquivalentVector returns the vector with the same element type as id and n
// elements; n == 1 yields the element scalar, an invalid n yields NoTypeID.
func (in *Interner) EquivalentVector(id TypeID, n int) TypeID {
	tt, ok := in.Lookup(in.Unqualified(id))
	if !ok {
		return NoTypeID
	}
	base := tt.Scalar
	if tt.Kind != KindVector && tt.Kind != KindInt && tt.Kind != KindFloat {
		return NoTypeID
	}
	if n == 1 {
		return in.Scalar(base)
	}
	v, err := in.VectorOf(base, n)
	if err != nil {
		return NoTypeID
	}
	return v
}

// Selection is a parsed vector element selection (`.xyz`, `.s01`, `.lo`).
type Selection struct {
	Indices    []int
	Duplicated bool
}

// ParseSelection resolves a component selector against an n-element vector.
// lo/hi/odd/even treat 3-element vectors as 4-element ones.
func ParseSelection(n int, sel string) (Selection, error) {
	if sel == "" {
		return Selection{}, fmt.Errorf("empty vector selection")
	}
	var idx []int
	switch sel {
	case "lo", "hi", "odd", "even":
		p := PhysicalWidth(n)
		start, end, step := 0, p, 1
		switch sel {
		case "lo":
			end = p >> 1
		case "hi":
			start = p >> 1
		case "odd":
			start, step = 1, 2
		case "even":
			step = 2
		}
		for i := start; i < end; i += step {
			idx = append(idx, i)
		}
	default:
		if sel[0] == 's' || sel[0] == 'S' {
			for _, c := range sel[1:] {
				i := sStyleIndex(c)
				if i < 0 {
					return Selection{}, fmt.Errorf("invalid vector element '%c' in .%s", c, sel)
				}
				idx = append(idx, i)
			}
			if len(idx) == 0 {
				return Selection{}, fmt.Errorf("empty vector selection .%s", sel)
			}
		} else {
			for _, c := range sel {
				i := geometricIndex(c)
				if i < 0 {
					return Selection{}, fmt.Errorf("invalid vector element '%c' in .%s", c, sel)
				}
				idx = append(idx, i)
			}
		}
		for _, i := range idx {
			if i >= n {
				return Selection{}, fmt.Errorf("vector element .%s out of range for %d elements", sel, n)
			}
		}
	}

	seen := make(map[int]struct{}, len(idx))
	dup := false
	for _, i := range idx {
		if _, ok := seen[i]; ok {
			dup = true
		}
		seen[i] = struct{}{}
	}
	return Selection{Indices: idx, Duplicated: dup}, nil
}

func geometricIndex(c rune) int {
	switch c {
	case 'x', 'X':
		return 0
	case 'y', 'Y':
		return 1
	case 'z', 'Z':
		return 2
	case 'w', 'W':
		return 3
	}
	return -1
}

func sStyleIndex(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return 10 + int(c-'a')
	case c >= 'A' && c <= 'F':
		return 10 + int(c-'A')
	}
	return -1
}
