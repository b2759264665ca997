package types

import (
	"slices"
	"strconv"
	"strings"
)

// FuncInfo describes a function type.
//
// Unspecified marks an old-style declarator `f()` which is compatible with any
// parameter list; VoidList marks `f(void)`.
type FuncInfo struct {
	Result      TypeID
	Params      []TypeID
	Variadic    bool
	Unspecified bool
	VoidList    bool
}

// HasParams reports whether the function has an explicit non-empty list.
func (f FuncInfo) HasParams() bool { return len(f.Params) > 0 }

// Func interns a function type. Identical signatures share one TypeID.
func (in *Interner) Func(info FuncInfo) TypeID {
	if len(info.Params) > 0 {
		info.Unspecified = false
		info.VoidList = false
	} else if info.VoidList {
		info.Unspecified = false
	}
	key := funcKey(info)

	in.mu.Lock()
	defer in.mu.Unlock()
	slot, ok := in.funcKeys[key]
	if !ok {
		info.Params = slices.Clone(info.Params)
		slot = appendSlot(&in.funcs, info)
		in.funcKeys[key] = slot
	}
	return in.internLocked(Type{Kind: KindFunction, Payload: slot})
}

// FuncInfo returns a copy of the function metadata of id.
func (in *Interner) FuncInfo(id TypeID) (FuncInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindFunction || tt.Payload == 0 || int(tt.Payload) >= len(in.funcs) {
		return FuncInfo{}, false
	}
	out := in.funcs[tt.Payload]
	out.Params = slices.Clone(out.Params)
	return out, true
}

func funcKey(info FuncInfo) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(info.Result), 10))
	sb.WriteByte('(')
	for i, p := range info.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	switch {
	case info.Variadic:
		sb.WriteString(",...")
	case info.VoidList:
		sb.WriteString("void")
	case info.Unspecified:
		sb.WriteByte('?')
	}
	sb.WriteByte(')')
	return sb.String()
}
