package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Builder assembles a File bottom-up: children are always created before
// their parent, so node ids grow from leaves to the module root.
type Builder struct {
	file *File
	line uint32
	top  []NodeID
}

func NewBuilder(module string) *Builder {
	return &Builder{file: &File{
		Producer: "c2c",
		Format:   FormatVersion,
		Module:   module,
		Nodes:    make([]Node, 1, 64),
	}}
}

// At sets the line recorded on subsequently created nodes.
func (b *Builder) At(line uint32) *Builder {
	b.line = line
	return b
}

func (b *Builder) New(kind NodeKind, text string, children ...NodeID) NodeID {
	n, err := safecast.Conv[uint32](len(b.file.Nodes))
	if err != nil {
		panic(fmt.Errorf("len(nodes) overflow: %w", err))
	}
	b.file.Nodes = append(b.file.Nodes, Node{Kind: kind, Line: b.line, Text: text, Children: children})
	return NodeID(n)
}

// Node exposes a node under construction for flag/spec tweaks.
func (b *Builder) Node(id NodeID) *Node { return b.file.Node(id) }

func (b *Builder) with(id NodeID, flags Flags) NodeID {
	b.file.Nodes[id].Flags |= flags
	return id
}

// Top appends a top-level declaration to the module.
func (b *Builder) Top(ids ...NodeID) *Builder {
	b.top = append(b.top, ids...)
	return b
}

// File seals the module root and returns the tree. The builder must not be
// reused afterwards.
func (b *Builder) File() *File {
	b.line = 0
	b.file.Root = b.New(KindModule, b.file.Module, b.top...)
	return b.file
}

// --- types

func (b *Builder) TName(name string, flags ...Flags) NodeID {
	return b.with(b.New(KindTypeName, name), orFlags(flags))
}

func (b *Builder) TPtr(elem NodeID, flags ...Flags) NodeID {
	return b.with(b.New(KindTypePointer, "", elem), orFlags(flags))
}

// TArray builds `elem[size]`; size NoNodeID leaves the array unsized.
func (b *Builder) TArray(elem, size NodeID) NodeID {
	return b.New(KindTypeArray, "", elem, size)
}

// TFunc builds a function type. No params without FlagVoidList is an
// old-style unspecified list.
func (b *Builder) TFunc(result NodeID, flags Flags, params ...NodeID) NodeID {
	return b.with(b.New(KindTypeFunc, "", append([]NodeID{result}, params...)...), flags)
}

func (b *Builder) TStruct(tag string, body bool, fields ...NodeID) NodeID {
	return b.record(KindTypeStruct, tag, body, fields)
}

func (b *Builder) TUnion(tag string, body bool, fields ...NodeID) NodeID {
	return b.record(KindTypeUnion, tag, body, fields)
}

func (b *Builder) TEnum(tag string, body bool, items ...NodeID) NodeID {
	return b.record(KindTypeEnum, tag, body, items)
}

func (b *Builder) record(kind NodeKind, tag string, body bool, members []NodeID) NodeID {
	id := b.New(kind, tag, members...)
	if body {
		b.with(id, FlagHasBody)
	}
	return id
}

func (b *Builder) Field(name string, typ NodeID) NodeID { return b.New(KindField, name, typ) }
func (b *Builder) Param(name string, typ NodeID) NodeID { return b.New(KindParam, name, typ) }

func (b *Builder) Enumerator(name string, value NodeID) NodeID {
	if value == NoNodeID {
		return b.New(KindEnumerator, name)
	}
	return b.New(KindEnumerator, name, value)
}

func (b *Builder) Attr(name string, args ...NodeID) NodeID { return b.New(KindAttr, name, args...) }

// --- declarations

// Decl builds `specs type name = init`; init may be NoNodeID.
func (b *Builder) Decl(name string, specs []Spec, typ, init NodeID, attrs ...NodeID) NodeID {
	id := b.New(KindDecl, name, append([]NodeID{typ, init}, attrs...)...)
	b.file.Nodes[id].Specs = specs
	return id
}

func (b *Builder) FuncDef(name string, specs []Spec, fn, body NodeID, attrs ...NodeID) NodeID {
	id := b.New(KindFuncDef, name, append([]NodeID{fn, body}, attrs...)...)
	b.file.Nodes[id].Specs = specs
	return id
}

// --- statements

func (b *Builder) Compound(items ...NodeID) NodeID { return b.New(KindCompound, "", items...) }
func (b *Builder) ExprStmt(e NodeID) NodeID        { return b.New(KindExprStmt, "", e) }

func (b *Builder) Return(e NodeID) NodeID {
	if e == NoNodeID {
		return b.New(KindReturn, "")
	}
	return b.New(KindReturn, "", e)
}

func (b *Builder) If(cond, then, els NodeID) NodeID  { return b.New(KindIf, "", cond, then, els) }
func (b *Builder) While(cond, body NodeID) NodeID    { return b.New(KindWhile, "", cond, body) }
func (b *Builder) For(init, cond, step, body NodeID) NodeID {
	return b.New(KindFor, "", init, cond, step, body)
}

// --- expressions

func (b *Builder) Int(text string) NodeID   { return b.New(KindIntLit, text) }
func (b *Builder) Float(text string) NodeID { return b.New(KindFloatLit, text) }
func (b *Builder) Char(text string) NodeID  { return b.New(KindCharLit, text) }
func (b *Builder) Str(text string) NodeID   { return b.New(KindStringLit, text) }
func (b *Builder) Ident(name string) NodeID { return b.New(KindIdent, name) }

func (b *Builder) Binary(op string, l, r NodeID) NodeID { return b.New(KindBinary, op, l, r) }
func (b *Builder) Assign(op string, l, r NodeID) NodeID { return b.New(KindAssign, op, l, r) }
func (b *Builder) Unary(op string, e NodeID) NodeID     { return b.New(KindUnary, op, e) }
func (b *Builder) Cast(typ, e NodeID) NodeID            { return b.New(KindCast, "", typ, e) }

func (b *Builder) SizeofType(typ NodeID) NodeID {
	return b.with(b.New(KindSizeof, "", typ), FlagTypeOperand)
}

func (b *Builder) SizeofExpr(e NodeID) NodeID { return b.New(KindSizeof, "", e) }

func (b *Builder) Call(callee NodeID, args ...NodeID) NodeID {
	return b.New(KindCall, "", append([]NodeID{callee}, args...)...)
}

func (b *Builder) Member(e NodeID, name string, arrow bool) NodeID {
	id := b.New(KindMember, name, e)
	if arrow {
		b.with(id, FlagArrow)
	}
	return id
}

func (b *Builder) Index(base, idx NodeID) NodeID       { return b.New(KindIndex, "", base, idx) }
func (b *Builder) Cond(c, then, els NodeID) NodeID     { return b.New(KindCond, "", c, then, els) }
func (b *Builder) InitList(elems ...NodeID) NodeID     { return b.New(KindInitList, "", elems...) }

func (b *Builder) DesigField(field string, v NodeID) NodeID {
	return b.New(KindDesignated, field, v)
}

func (b *Builder) DesigIndex(idx, v NodeID) NodeID { return b.New(KindDesignated, "", idx, v) }

func (b *Builder) DesigRange(lo, hi, v NodeID) NodeID {
	return b.with(b.New(KindDesignated, "", lo, hi, v), FlagRange)
}

func (b *Builder) VectorLit(typ NodeID, elems ...NodeID) NodeID {
	return b.New(KindVectorLit, "", append([]NodeID{typ}, elems...)...)
}

func orFlags(flags []Flags) Flags {
	var out Flags
	for _, f := range flags {
		out |= f
	}
	return out
}
