package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Field describes one member of a struct or union.
type Field struct {
	Name string
	Type TypeID
}

// RecordInfo stores metadata for a nominal struct or union type.
// Records start incomplete and are completed in place, so every reference to
// the tag observes the completion.
type RecordInfo struct {
	Tag      string
	Union    bool
	Complete bool
	Fields   []Field
}

// RegisterRecord allocates a new nominal struct/union type. An empty tag
// denotes an anonymous record.
func (in *Interner) RegisterRecord(union bool, tag string) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	slot := appendSlot(&in.records, RecordInfo{Tag: tag, Union: union})
	kind := KindStruct
	if union {
		kind = KindUnion
	}
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// CompleteRecord stores the field list and marks the record complete.
// It returns false when the record was already complete.
func (in *Interner) CompleteRecord(id TypeID, fields []Field) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.recordLocked(id)
	if info == nil || info.Complete {
		return false
	}
	info.Fields = slices.Clone(fields)
	info.Complete = true
	return true
}

// Record returns a copy of the record metadata of id (qualifiers ignored).
func (in *Interner) Record(id TypeID) (RecordInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.recordLocked(id)
	if info == nil {
		return RecordInfo{}, false
	}
	out := *info
	out.Fields = slices.Clone(info.Fields)
	return out, true
}

func (in *Interner) recordLocked(id TypeID) *RecordInfo {
	tt, ok := in.lookupLocked(id)
	if !ok || (tt.Kind != KindStruct && tt.Kind != KindUnion) {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.records) {
		return nil
	}
	return &in.records[tt.Payload]
}

// EnumConst is one enumerator of an enum type.
type EnumConst struct {
	Name  string
	Value int64
}

// EnumInfo stores metadata for a nominal enum type.
type EnumInfo struct {
	Tag       string
	Complete  bool
	Constants []EnumConst
}

// RegisterEnum allocates a new nominal enum type. Enums are int-sized.
func (in *Interner) RegisterEnum(tag string) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	slot := appendSlot(&in.enums, EnumInfo{Tag: tag})
	return in.internRaw(Type{Kind: KindEnum, Scalar: intScalar, Payload: slot})
}

// CompleteEnum stores the enumerators of an enum type.
func (in *Interner) CompleteEnum(id TypeID, consts []EnumConst) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.enumLocked(id)
	if info == nil || info.Complete {
		return false
	}
	info.Constants = slices.Clone(consts)
	info.Complete = true
	return true
}

// Enum returns a copy of the enum metadata of id.
func (in *Interner) Enum(id TypeID) (EnumInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.enumLocked(id)
	if info == nil {
		return EnumInfo{}, false
	}
	out := *info
	out.Constants = slices.Clone(info.Constants)
	return out, true
}

func (in *Interner) enumLocked(id TypeID) *EnumInfo {
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func appendSlot[T any](dst *[]T, v T) uint32 {
	n, err := safecast.Conv[uint32](len(*dst))
	if err != nil {
		panic(fmt.Errorf("types: slot overflow: %w", err))
	}
	*dst = append(*dst, v)
	return n
}
