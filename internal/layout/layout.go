package layout

import (
	"c2c/internal/abi"
	"c2c/internal/types"
)

// TypeLayout is the ABI layout of a type.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
}

// LayoutEngine computes memory layout for types against one bound ABI.
// Source and target ABIs get separate engines.
type LayoutEngine struct {
	ABI   *abi.ABI
	Types *types.Interner

	cache *cache
}

// New creates a new LayoutEngine for the specified ABI.
func New(a *abi.ABI, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		ABI:   a,
		Types: typesIn,
		cache: newCache(),
	}
}

// LayoutOf computes and caches the layout of a type. Incomplete types and
// types the ABI does not provide report a *LayoutError and are not cached,
// since a later completion may fix them.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil || e.ABI == nil || e.Types == nil {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrUnbound, Type: t}
	}
	l, err := e.layoutOf(t)
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t types.TypeID) (TypeLayout, *LayoutError) {
	canon := e.Types.Unqualified(t)
	if cached, ok := e.cache.get(canon); ok {
		return cached, nil
	}
	l, err := e.computeLayout(canon)
	if err != nil {
		return TypeLayout{}, err
	}
	e.cache.put(canon, l)
	return l, nil
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *LayoutEngine) FieldOffset(structT types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
