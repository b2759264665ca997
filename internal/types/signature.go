package types

import (
	"strconv"
	"strings"

	"c2c/internal/abi"
)

// Signature returns the mangling signature of a type.
func (in *Interner) Signature(id TypeID) string {
	var sb strings.Builder
	in.writeSignature(&sb, id)
	return sb.String()
}

// ParamSignature concatenates the signatures of the unqualified parameters of
// a function type; address spaces do not matter for by-value parameters.
// A function without parameters has an empty signature.
func (in *Interner) ParamSignature(fn TypeID) string {
	info, ok := in.FuncInfo(fn)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, p := range info.Params {
		in.writeSignature(&sb, in.Unqualified(p))
	}
	return sb.String()
}

func (in *Interner) writeSignature(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		return
	}
	if tt.IsQualified() {
		sb.WriteByte('Q')
		sb.WriteString(tt.Space.signature())
		in.writeSignature(sb, in.Unqualified(id))
		return
	}
	switch tt.Kind {
	case KindVoid:
		sb.WriteByte('v')
	case KindBool, KindInt, KindFloat:
		sb.WriteString(scalarSignature(tt.Scalar))
	case KindPointer, KindArray:
		// arrays decay to pointers as parameters
		sb.WriteByte('P')
		in.writeSignature(sb, tt.Elem)
	case KindVector:
		sb.WriteByte('V')
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		sb.WriteString(scalarSignature(tt.Scalar))
	case KindStruct, KindUnion:
		info, _ := in.Record(id)
		sb.WriteString(strconv.Itoa(len(info.Tag)))
		sb.WriteString(info.Tag)
	case KindEnum:
		info, _ := in.Enum(id)
		sb.WriteString(strconv.Itoa(len(info.Tag)))
		sb.WriteString(info.Tag)
	case KindFunction:
		info, _ := in.FuncInfo(id)
		sb.WriteByte('F')
		in.writeSignature(sb, info.Result)
		if !info.HasParams() {
			if info.VoidList {
				sb.WriteByte('v')
			} else {
				sb.WriteByte('*')
			}
		} else {
			for _, p := range info.Params {
				in.writeSignature(sb, in.Unqualified(p))
			}
		}
		sb.WriteByte('E')
	}
}

func scalarSignature(s abi.Scalar) string {
	switch s {
	case abi.Bool:
		return "b"
	case abi.Char, abi.SChar:
		return "c"
	case abi.UChar:
		return "h"
	case abi.Short:
		return "s"
	case abi.UShort:
		return "t"
	case abi.Int:
		return "i"
	case abi.UInt:
		return "j"
	case abi.Long:
		return "l"
	case abi.ULong:
		return "m"
	case abi.LongLong:
		return "x"
	case abi.ULongLong:
		return "y"
	case abi.Float:
		return "f"
	case abi.Double:
		return "d"
	case abi.LongDouble:
		return "e"
	}
	return ""
}
