package types

// IsComplete reports whether id has a fixed size: void, incomplete records
// and enums, unsized arrays and functions do not.
func (in *Interner) IsComplete(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindVoid, KindFunction:
		return false
	case KindArray:
		return tt.Count != ArrayUnsized && in.IsComplete(tt.Elem)
	case KindStruct, KindUnion:
		info, _ := in.Record(id)
		return info.Complete
	case KindEnum:
		// enums are int-sized even before completion
		return true
	}
	return true
}

// IsArithmetic reports integer, bool, enum and floating types.
func (in *Interner) IsArithmetic(id TypeID) bool {
	switch in.Kind(id) {
	case KindBool, KindInt, KindFloat, KindEnum:
		return true
	}
	return false
}

// IsInteger reports integer, bool and enum types.
func (in *Interner) IsInteger(id TypeID) bool {
	switch in.Kind(id) {
	case KindBool, KindInt, KindEnum:
		return true
	}
	return false
}

// IsScalar reports arithmetic and pointer types.
func (in *Interner) IsScalar(id TypeID) bool {
	return in.IsArithmetic(id) || in.Kind(id) == KindPointer
}

// ElementCount returns the number of elements of an array or vector, or the
// number of fields of a complete record. The second result is false when the
// count is not known.
func (in *Interner) ElementCount(id TypeID) (int, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindArray:
		if tt.Count == ArrayUnsized {
			return 0, false
		}
		return int(tt.Count), true
	case KindVector:
		return int(tt.Count), true
	case KindStruct, KindUnion:
		info, _ := in.Record(id)
		if !info.Complete {
			return 0, false
		}
		return len(info.Fields), true
	}
	return 0, false
}

// EquivalentForMangling compares two function types for overload selection:
// the result does not discriminate, an unspecified list matches anything, a
// void list only matches a void list, otherwise parameters must match one by
// one (unqualified; address-space qualified candidates never match).
func (in *Interner) EquivalentForMangling(a, b TypeID) bool {
	fa, ok := in.FuncInfo(a)
	if !ok {
		return false
	}
	fb, ok := in.FuncInfo(b)
	if !ok {
		return false
	}
	return in.paramsEquivalent(fa, fb)
}

func (in *Interner) paramsEquivalent(fa, fb FuncInfo) bool {
	if fa.Unspecified || fb.Unspecified {
		return true
	}
	if fa.VoidList || fb.VoidList {
		return fa.VoidList && fb.VoidList
	}
	if len(fa.Params) != len(fb.Params) || fa.Variadic != fb.Variadic {
		return false
	}
	for i := range fa.Params {
		if !in.paramEquivalent(fa.Params[i], fb.Params[i]) {
			return false
		}
	}
	return true
}

func (in *Interner) paramEquivalent(a, b TypeID) bool {
	tb, ok := in.Lookup(b)
	if !ok || tb.Space != SpaceNone {
		return false
	}
	return in.Unqualified(a) == in.Unqualified(b)
}

// Compatible reports whether two declarations of one entity may be merged:
// identical types, arrays where one side is unsized, function types with the
// same result and equivalent parameters, and records/enums of other modules
// with the same tag and member list.
func (in *Interner) Compatible(a, b TypeID) bool {
	return in.compatible(a, b, make(map[[2]TypeID]struct{}))
}

func (in *Interner) compatible(a, b TypeID, visiting map[[2]TypeID]struct{}) bool {
	if a == b {
		return true
	}
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB || ta.Kind != tb.Kind || ta.Qual != tb.Qual || ta.Space != tb.Space {
		return false
	}
	switch ta.Kind {
	case KindBool, KindInt, KindFloat:
		return ta.Scalar == tb.Scalar
	case KindPointer:
		return in.compatible(ta.Elem, tb.Elem, visiting)
	case KindArray:
		if ta.Count != tb.Count && ta.Count != ArrayUnsized && tb.Count != ArrayUnsized {
			return false
		}
		return in.compatible(ta.Elem, tb.Elem, visiting)
	case KindVector:
		return ta.Scalar == tb.Scalar && ta.Count == tb.Count
	case KindFunction:
		fa, _ := in.FuncInfo(a)
		fb, _ := in.FuncInfo(b)
		if !in.compatible(fa.Result, fb.Result, visiting) {
			return false
		}
		return in.paramsEquivalent(fa, fb)
	case KindStruct, KindUnion:
		pair := [2]TypeID{a, b}
		if _, ok := visiting[pair]; ok {
			return true
		}
		visiting[pair] = struct{}{}
		ra, _ := in.Record(a)
		rb, _ := in.Record(b)
		if ra.Tag != rb.Tag {
			return false
		}
		if !ra.Complete || !rb.Complete {
			return true
		}
		if len(ra.Fields) != len(rb.Fields) {
			return false
		}
		for i := range ra.Fields {
			if ra.Fields[i].Name != rb.Fields[i].Name || !in.compatible(ra.Fields[i].Type, rb.Fields[i].Type, visiting) {
				return false
			}
		}
		return true
	case KindEnum:
		ea, _ := in.Enum(a)
		eb, _ := in.Enum(b)
		return ea.Tag == eb.Tag
	}
	return false
}
