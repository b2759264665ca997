package build

import (
	"regexp"
	"strconv"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

var scalarNames = map[string]abi.Scalar{
	"_Bool":              abi.Bool,
	"bool":               abi.Bool,
	"char":               abi.Char,
	"signed char":        abi.SChar,
	"unsigned char":      abi.UChar,
	"uchar":              abi.UChar,
	"short":              abi.Short,
	"short int":          abi.Short,
	"signed short":       abi.Short,
	"unsigned short":     abi.UShort,
	"unsigned short int": abi.UShort,
	"ushort":             abi.UShort,
	"int":                abi.Int,
	"signed":             abi.Int,
	"signed int":         abi.Int,
	"unsigned":           abi.UInt,
	"unsigned int":       abi.UInt,
	"uint":               abi.UInt,
	"long":               abi.Long,
	"long int":           abi.Long,
	"signed long":        abi.Long,
	"unsigned long":      abi.ULong,
	"unsigned long int":  abi.ULong,
	"ulong":              abi.ULong,
	"long long":          abi.LongLong,
	"long long int":      abi.LongLong,
	"unsigned long long": abi.ULongLong,
	"float":              abi.Float,
	"double":             abi.Double,
	"long double":        abi.LongDouble,
}

var vectorName = regexp.MustCompile(`^(char|uchar|short|ushort|int|uint|long|ulong|float|double)(\d+)$`)

// deps accumulates the tags and typedefs a type expression names.
type deps []symbols.SymbolID

func (d *deps) add(id symbols.SymbolID) {
	for _, x := range *d {
		if x == id {
			return
		}
	}
	*d = append(*d, id)
}

func qualifiers(n *ast.Node) (types.Qual, types.AddrSpace) {
	var q types.Qual
	if n.Has(ast.FlagConst) {
		q |= types.QualConst
	}
	if n.Has(ast.FlagVolatile) {
		q |= types.QualVolatile
	}
	if n.Has(ast.FlagRestrict) {
		q |= types.QualRestrict
	}
	space := types.SpaceNone
	switch {
	case n.Has(ast.FlagGlobal):
		space = types.SpaceGlobal
	case n.Has(ast.FlagLocal):
		space = types.SpaceLocal
	case n.Has(ast.FlagConstantSpace):
		space = types.SpaceConstant
	case n.Has(ast.FlagPrivate):
		space = types.SpacePrivate
	}
	return q, space
}

// typeOf resolves a type expression. declOnly marks a bare `struct S;`.
func (b *builder) typeOf(id ast.NodeID, d *deps, declOnly bool) types.TypeID {
	n := b.node(id)
	if n == nil {
		return b.env.Types.Builtins().Int
	}
	var t types.TypeID
	switch n.Kind {
	case ast.KindTypeName:
		t = b.namedType(id, n, d)
	case ast.KindTypePointer:
		t = b.env.Types.PointerTo(b.typeOf(n.Child(0), d, false))
	case ast.KindTypeArray:
		t = b.arrayType(n, d)
	case ast.KindTypeFunc:
		t = b.funcType(n, d)
	case ast.KindTypeStruct, ast.KindTypeUnion, ast.KindTypeEnum:
		t = b.tagType(id, n, d, declOnly)
	default:
		b.errorf(diag.InputBadTree, id, "expected a type, found "+n.Kind.String())
		return b.env.Types.Builtins().Invalid
	}
	if q, space := qualifiers(n); q != 0 || space != types.SpaceNone {
		t = b.env.Types.Qualified(t, q, space)
	}
	return t
}

func (b *builder) namedType(id ast.NodeID, n *ast.Node, d *deps) types.TypeID {
	in := b.env.Types
	if n.Text == "void" {
		return in.Builtins().Void
	}
	if s, ok := scalarNames[n.Text]; ok {
		if !b.env.Folder.ABI.Supports(s) {
			b.errorf(diag.DeclTypeNotSupported, id, "type '"+n.Text+"' is not supported by the "+b.env.Folder.ABI.Name+" ABI")
		}
		return in.Scalar(s)
	}
	if sym := b.tab.Lookup(n.Text); sym != nil && sym.Kind == symbols.KindTypedef {
		d.add(sym.ID)
		return sym.Type
	}
	if b.env.Dialect == abi.DialectOpenCL {
		switch n.Text {
		case "size_t":
			return in.Scalar(b.env.Folder.ABI.SizeT)
		case "ptrdiff_t":
			return in.Scalar(b.env.Folder.ABI.PtrdiffT)
		case "intptr_t":
			return in.Scalar(b.env.Folder.ABI.IntptrT)
		case "uintptr_t":
			return in.Scalar(b.env.Folder.ABI.UintptrT)
		}
		if m := vectorName.FindStringSubmatch(n.Text); m != nil {
			width, _ := strconv.Atoi(m[2])
			s := scalarNames[m[1]]
			if !b.env.Folder.ABI.Supports(s) {
				b.errorf(diag.DeclTypeNotSupported, id, "type '"+n.Text+"' is not supported by the "+b.env.Folder.ABI.Name+" ABI")
			}
			v, err := in.VectorOf(s, width)
			if err != nil {
				b.errorf(diag.DeclBadVectorWidth, id, err.Error())
				return in.Builtins().Invalid
			}
			return v
		}
	}
	b.errorf(diag.DeclUnknownType, id, "unknown type name '"+n.Text+"'")
	return in.Builtins().Invalid
}

func (b *builder) arrayType(n *ast.Node, d *deps) types.TypeID {
	elem := b.typeOf(n.Child(0), d, false)
	size := n.Child(1)
	if !size.IsValid() {
		return b.env.Types.ArrayOf(elem, types.ArrayUnsized)
	}
	e := b.expr(size)
	v, ok := e.IntegralValue()
	switch {
	case !ok:
		// variable length arrays are kept unsized
		b.errorf(diag.DeclNotConstant, size, "array size is not an integer constant")
		return b.env.Types.ArrayOf(elem, types.ArrayUnsized)
	case v.Sign() < 0 || !v.IsUint64() || v.Uint64() >= uint64(types.ArrayUnsized):
		b.errorf(diag.DeclBadInitializer, size, "invalid array size "+v.String())
		return b.env.Types.ArrayOf(elem, types.ArrayUnsized)
	}
	return b.env.Types.ArrayOf(elem, uint32(v.Uint64()))
}

func (b *builder) funcType(n *ast.Node, d *deps) types.TypeID {
	in := b.env.Types
	info := types.FuncInfo{
		Result:   b.typeOf(n.Child(0), d, false),
		Variadic: n.Has(ast.FlagVariadic),
		VoidList: n.Has(ast.FlagVoidList),
	}
	for _, p := range n.Children[1:] {
		var pd deps
		pt := b.adjustParam(b.typeOf(b.node(p).Child(0), &pd, false))
		info.Params = append(info.Params, pt)
		b.params[p] = param{typ: pt, deps: pd}
		for _, x := range pd {
			d.add(x)
		}
	}
	if len(info.Params) == 0 && !info.VoidList {
		info.Unspecified = true
	}
	return in.Func(info)
}

// adjustParam turns array and function parameters into pointers.
func (b *builder) adjustParam(t types.TypeID) types.TypeID {
	in := b.env.Types
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case types.KindArray:
		return in.PointerTo(tt.Elem)
	case types.KindFunction:
		return in.PointerTo(t)
	}
	return t
}

func tagKind(k ast.NodeKind) symbols.Kind {
	switch k {
	case ast.KindTypeUnion:
		return symbols.KindUnionTag
	case ast.KindTypeEnum:
		return symbols.KindEnumTag
	}
	return symbols.KindStructTag
}

func (b *builder) newTagType(kind symbols.Kind, tag string) types.TypeID {
	switch kind {
	case symbols.KindUnionTag:
		return b.env.Types.RegisterRecord(true, tag)
	case symbols.KindEnumTag:
		return b.env.Types.RegisterEnum(tag)
	}
	return b.env.Types.RegisterRecord(false, tag)
}

func (b *builder) tagType(id ast.NodeID, n *ast.Node, d *deps, declOnly bool) types.TypeID {
	kind := tagKind(n.Kind)
	name := n.Text

	if !n.Has(ast.FlagHasBody) {
		if name == "" {
			b.errorf(diag.InputBadTree, id, "anonymous tag without a member list")
			return b.env.Types.Builtins().Invalid
		}
		prev := b.tab.LookupTag(name)
		if declOnly {
			prev = b.tab.LookupTagInScope(name)
		}
		if prev != nil && prev.Kind == kind {
			d.add(prev.ID)
			return prev.Type
		}
		if prev != nil && !declOnly {
			b.errorf(diag.DeclDifferentSymbol, id, "'"+name+"' defined as wrong kind of tag")
		}
		sym := b.tab.NewSymbol(kind, name, 0, b.newTagType(kind, name), b.site(id))
		b.tab.Add(sym)
		d.add(sym.ID)
		return sym.Type
	}

	var typ types.TypeID
	if prev := b.tab.LookupTagInScope(name); name != "" && prev != nil && prev.Kind == kind && !prev.Tag.Definition {
		typ = prev.Type
	} else {
		typ = b.newTagType(kind, name)
	}
	var sym *symbols.Symbol
	if name != "" {
		sym = b.tab.NewSymbol(kind, name, 0, typ, b.site(id))
		sym.Tag.Definition = true
		b.tab.Add(sym)
		d.add(sym.ID)
	}

	var members deps
	if kind == symbols.KindEnumTag {
		b.enumBody(n, typ, sym)
	} else {
		var fields []types.Field
		for _, f := range n.Children {
			fn := b.node(f)
			ft := b.typeOf(fn.Child(0), &members, false)
			if !b.env.Types.IsComplete(ft) {
				b.errorf(diag.DeclIncompleteType, f, "field '"+fn.Text+"' has incomplete type")
			}
			fields = append(fields, types.Field{Name: fn.Text, Type: ft})
		}
		b.env.Types.CompleteRecord(typ, fields)
	}
	if sym != nil {
		b.linkParents(sym, members)
	} else {
		// members of an anonymous tag belong to the enclosing declaration
		for _, m := range members {
			d.add(m)
		}
	}
	return typ
}

func (b *builder) enumBody(n *ast.Node, typ types.TypeID, tag *symbols.Symbol) {
	intT := b.env.Types.Builtins().Int
	var consts []types.EnumConst
	next := int64(0)
	for _, item := range n.Children {
		in := b.node(item)
		if v := in.Child(0); v.IsValid() {
			e := b.expr(v)
			if val, ok := e.IntegralValue(); ok && val.IsInt64() {
				next = val.Int64()
			} else {
				b.errorf(diag.DeclNotConstant, v, "enumerator value for '"+in.Text+"' is not an integer constant")
			}
		}
		c := b.tab.NewSymbol(symbols.KindEnumConst, in.Text, 0, intT, b.site(item))
		c.EnumConst.Value = next
		if tag != nil {
			c.EnumConst.Tag = tag.ID
			tag.Tag.Children = append(tag.Tag.Children, c.ID)
		}
		b.tab.Add(c)
		consts = append(consts, types.EnumConst{Name: in.Text, Value: next})
		next++
	}
	b.env.Types.CompleteEnum(typ, consts)
}
