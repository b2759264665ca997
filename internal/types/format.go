package types

import (
	"strconv"
	"strings"

	"c2c/internal/abi"
)

// String renders id as an abstract C type name, e.g. `int *[4]`.
func (in *Interner) String(id TypeID) string {
	return in.Declarator(id, "")
}

// Declarator renders a C declaration of name with type id, e.g.
// `int (*fp)(int, char *)` or `float4 v`. An empty name gives an abstract
// declarator.
func (in *Interner) Declarator(id TypeID, name string) string {
	return in.declarator(id, name)
}

func (in *Interner) declarator(id TypeID, inner string) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return join("<invalid>", inner)
	}
	switch tt.Kind {
	case KindPointer:
		ptr := "*" + qualPrefix(tt, true)
		if strings.HasSuffix(ptr, " ") && inner == "" {
			ptr = strings.TrimSuffix(ptr, " ")
		}
		inner = ptr + inner
		if ek := in.Kind(tt.Elem); ek == KindArray || ek == KindFunction {
			inner = "(" + inner + ")"
		}
		return in.declarator(tt.Elem, inner)
	case KindArray:
		if tt.Count == ArrayUnsized {
			inner += "[]"
		} else {
			inner += "[" + strconv.FormatUint(uint64(tt.Count), 10) + "]"
		}
		return in.declarator(tt.Elem, inner)
	case KindFunction:
		info, _ := in.FuncInfo(id)
		var params []string
		for _, p := range info.Params {
			params = append(params, in.declarator(p, ""))
		}
		switch {
		case info.VoidList:
			params = []string{"void"}
		case info.Variadic:
			params = append(params, "...")
		}
		inner += "(" + strings.Join(params, ", ") + ")"
		return in.declarator(info.Result, inner)
	}
	return join(qualPrefix(tt, false)+in.baseName(tt, id), inner)
}

func join(base, inner string) string {
	if inner == "" {
		return base
	}
	if strings.HasPrefix(inner, "[") || strings.HasPrefix(inner, "(") && !strings.HasPrefix(inner, "(*") {
		return base + inner
	}
	return base + " " + inner
}

func qualPrefix(tt Type, pointer bool) string {
	var parts []string
	if kw := tt.Space.keyword(); kw != "" && !pointer {
		parts = append(parts, kw)
	}
	if tt.Qual&QualConst != 0 {
		parts = append(parts, "const")
	}
	if tt.Qual&QualVolatile != 0 {
		parts = append(parts, "volatile")
	}
	if tt.Qual&QualRestrict != 0 {
		parts = append(parts, "restrict")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

func (in *Interner) baseName(tt Type, id TypeID) string {
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool, KindInt, KindFloat:
		return tt.Scalar.String()
	case KindVector:
		return vectorBaseName(tt.Scalar) + strconv.FormatUint(uint64(tt.Count), 10)
	case KindStruct, KindUnion:
		info, _ := in.Record(id)
		kw := "struct"
		if info.Union {
			kw = "union"
		}
		if info.Tag == "" {
			return kw + " <anonymous>"
		}
		return kw + " " + info.Tag
	case KindEnum:
		info, _ := in.Enum(id)
		if info.Tag == "" {
			return "enum <anonymous>"
		}
		return "enum " + info.Tag
	}
	return tt.Kind.String()
}

func vectorBaseName(s abi.Scalar) string {
	switch s {
	case abi.Char, abi.SChar:
		return "char"
	case abi.UChar:
		return "uchar"
	case abi.Short:
		return "short"
	case abi.UShort:
		return "ushort"
	case abi.Int:
		return "int"
	case abi.UInt:
		return "uint"
	case abi.Long:
		return "long"
	case abi.ULong:
		return "ulong"
	case abi.Float:
		return "float"
	case abi.Double:
		return "double"
	}
	return s.String()
}
