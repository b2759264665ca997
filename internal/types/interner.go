package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"c2c/internal/abi"
)

// Builtins stores TypeIDs for the primitive C types.
type Builtins struct {
	Invalid    TypeID
	Void       TypeID
	Bool       TypeID
	Char       TypeID
	SChar      TypeID
	UChar      TypeID
	Short      TypeID
	UShort     TypeID
	Int        TypeID
	UInt       TypeID
	Long       TypeID
	ULong      TypeID
	LongLong   TypeID
	ULongLong  TypeID
	Float      TypeID
	Double     TypeID
	LongDouble TypeID
	VoidPtr    TypeID
	CharPtr    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// One interner is shared by every module of a compiler instance, so it is
// safe for concurrent use.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	scalars  map[abi.Scalar]TypeID
	records  []RecordInfo
	enums    []EnumInfo
	funcs    []FuncInfo
	funcKeys map[string]uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		scalars:  make(map[abi.Scalar]TypeID, 16),
		funcKeys: make(map[string]uint32, 16),
	}
	// reserve slot 0 everywhere as invalid sentinel
	in.records = append(in.records, RecordInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.funcs = append(in.funcs, FuncInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.internLocked(Type{Kind: KindVoid})

	scalar := func(kind Kind, s abi.Scalar) TypeID {
		id := in.internLocked(Type{Kind: kind, Scalar: s})
		in.scalars[s] = id
		return id
	}
	in.builtins.Bool = scalar(KindBool, abi.Bool)
	in.builtins.Char = scalar(KindInt, abi.Char)
	in.builtins.SChar = scalar(KindInt, abi.SChar)
	in.builtins.UChar = scalar(KindInt, abi.UChar)
	in.builtins.Short = scalar(KindInt, abi.Short)
	in.builtins.UShort = scalar(KindInt, abi.UShort)
	in.builtins.Int = scalar(KindInt, abi.Int)
	in.builtins.UInt = scalar(KindInt, abi.UInt)
	in.builtins.Long = scalar(KindInt, abi.Long)
	in.builtins.ULong = scalar(KindInt, abi.ULong)
	in.builtins.LongLong = scalar(KindInt, abi.LongLong)
	in.builtins.ULongLong = scalar(KindInt, abi.ULongLong)
	in.builtins.Float = scalar(KindFloat, abi.Float)
	in.builtins.Double = scalar(KindFloat, abi.Double)
	in.builtins.LongDouble = scalar(KindFloat, abi.LongDouble)
	in.builtins.VoidPtr = in.internLocked(MakePointer(in.builtins.Void))
	in.builtins.CharPtr = in.internLocked(MakePointer(in.builtins.Char))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Scalar returns the TypeID of an arithmetic scalar (NoTypeID for Pointer).
func (in *Interner) Scalar(s abi.Scalar) TypeID {
	return in.scalars[s]
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internLocked(t)
}

func (in *Interner) internLocked(t Type) TypeID {
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookupLocked(id)
}

func (in *Interner) lookupLocked(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind of id or KindInvalid.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// PointerTo interns `elem *`.
func (in *Interner) PointerTo(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// ArrayOf interns `elem[count]`.
func (in *Interner) ArrayOf(elem TypeID, count uint32) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// Qualified returns id with extra qualifiers (and address space when not SpaceNone).
func (in *Interner) Qualified(id TypeID, q Qual, space AddrSpace) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	tt.Qual |= q
	if space != SpaceNone {
		tt.Space = space
	}
	return in.Intern(tt)
}

// Unqualified strips qualifiers and address space from the top level of id.
func (in *Interner) Unqualified(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || !tt.IsQualified() {
		return id
	}
	tt.Qual = 0
	tt.Space = SpaceNone
	return in.Intern(tt)
}

type typeKey struct {
	Kind    Kind
	Scalar  abi.Scalar
	Elem    TypeID
	Count   uint32
	Qual    Qual
	Space   AddrSpace
	Payload uint32
}
