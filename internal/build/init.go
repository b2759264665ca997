package build

import (
	"strconv"

	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/literal"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// initializer builds the literal initializing an object of type t.
func (b *builder) initializer(t types.TypeID, id ast.NodeID) literal.Literal {
	n := b.node(id)
	in := b.env.Types
	switch {
	case n == nil:
		return nil
	case n.Kind == ast.KindInitList:
		return b.braced(t, id, n)
	case n.Kind == ast.KindVectorLit:
		return b.vectorLiteral(id)
	case n.Kind == ast.KindStringLit && b.isCharArray(t):
		e := b.expr(id)
		return literal.NewExpr(id, e, ast.PrintExpr(b.f, id))
	}

	e := b.expr(id)
	switch in.Kind(t) {
	case types.KindBool, types.KindInt, types.KindFloat, types.KindEnum, types.KindPointer:
		// initialization converts like a cast
		if c, err := b.env.Folder.Cast(t, e); err == nil {
			e = c
		}
	}
	return literal.NewExpr(id, e, ast.PrintExpr(b.f, id))
}

func (b *builder) isCharArray(t types.TypeID) bool {
	in := b.env.Types
	tt, ok := in.Lookup(in.Unqualified(t))
	if !ok || tt.Kind != types.KindArray {
		return false
	}
	elem := in.MustLookup(in.Unqualified(tt.Elem))
	return elem.Kind == types.KindInt && elem.Scalar.Rank() == 2
}

// elementType is the type initialized at position i of an aggregate of type t.
func (b *builder) elementType(t types.TypeID, i int) (types.TypeID, bool) {
	in := b.env.Types
	u := in.Unqualified(t)
	tt, ok := in.Lookup(u)
	if !ok {
		return types.NoTypeID, false
	}
	switch tt.Kind {
	case types.KindArray:
		if tt.Count != types.ArrayUnsized && i >= int(tt.Count) {
			return types.NoTypeID, false
		}
		return tt.Elem, true
	case types.KindVector:
		if i >= int(tt.Count) {
			return types.NoTypeID, false
		}
		return in.Scalar(tt.Scalar), true
	case types.KindStruct, types.KindUnion:
		rec, _ := in.Record(u)
		if i >= len(rec.Fields) {
			return types.NoTypeID, false
		}
		return rec.Fields[i].Type, true
	}
	return types.NoTypeID, false
}

func (b *builder) fieldIndex(t types.TypeID, name string) int {
	rec, ok := b.env.Types.Record(b.env.Types.Unqualified(t))
	if !ok {
		return -1
	}
	for i, f := range rec.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (b *builder) constIndex(id ast.NodeID) (int, bool) {
	e := b.expr(id)
	v, ok := e.IntegralValue()
	if !ok || v.Sign() < 0 || !v.IsInt64() || v.Int64() > 1<<24 {
		b.errorf(diag.DeclBadInitializer, id, "array index in initializer is not a non-negative integer constant")
		return 0, false
	}
	return int(v.Int64()), true
}

func (b *builder) braced(t types.TypeID, id ast.NodeID, n *ast.Node) literal.Literal {
	in := b.env.Types
	switch in.Kind(t) {
	case types.KindArray, types.KindStruct, types.KindUnion:
	case types.KindVector:
		v := literal.NewVector(in, t, id)
		b.fill(t, v, n)
		return v
	default:
		// int x = {3};
		if len(n.Children) == 0 {
			b.errorf(diag.DeclBadInitializer, id, "empty scalar initializer")
			return literal.NewExpr(id, etype.Value(t), "{}")
		}
		if len(n.Children) > 1 {
			b.warnf(diag.DeclBadInitializer, id, "excess elements in scalar initializer")
		}
		return b.initializer(t, n.Children[0])
	}
	if !in.IsComplete(t) && in.Kind(t) != types.KindArray {
		b.errorf(diag.DeclIncompleteType, id, "variable has incomplete type '"+in.String(t)+"'")
	}
	agg := literal.NewAggregate(in, t, id)
	b.fill(t, agg, n)
	return agg
}

// elements is filled by a braced list. *literal.Vector counts its
// definition elements on the way.
type elements interface {
	Add(literal.Literal)
	AddAt(int, literal.Literal)
	AddRange(lo, hi int, l literal.Literal)
	Next() int
}

// fill stores the elements of a braced list, honouring designators.
func (b *builder) fill(t types.TypeID, agg elements, n *ast.Node) {
	in := b.env.Types
	for _, el := range n.Children {
		en := b.node(el)
		if en.Kind != ast.KindDesignated {
			et, ok := b.elementType(t, agg.Next())
			if !ok {
				b.warnf(diag.DeclBadInitializer, el, "excess elements in initializer for '"+in.String(t)+"'")
				return
			}
			agg.Add(b.initializer(et, el))
			continue
		}

		value := en.Children[len(en.Children)-1]
		switch {
		case en.Text != "":
			i := b.fieldIndex(t, en.Text)
			if i < 0 {
				b.errorf(diag.DeclUnknownMember, el, "field '"+en.Text+"' not found in '"+in.String(t)+"'")
				continue
			}
			et, _ := b.elementType(t, i)
			agg.AddAt(i, b.initializer(et, value))
		case en.Has(ast.FlagRange):
			lo, ok1 := b.constIndex(en.Child(0))
			hi, ok2 := b.constIndex(en.Child(1))
			if !ok1 || !ok2 {
				continue
			}
			if hi < lo {
				b.errorf(diag.DeclBadInitializer, el, "empty index range in initializer ["+strconv.Itoa(lo)+" ... "+strconv.Itoa(hi)+"]")
				continue
			}
			et, ok := b.elementType(t, hi)
			if !ok {
				b.errorf(diag.DeclBadInitializer, el, "array index in initializer exceeds array bounds")
				continue
			}
			agg.AddRange(lo, hi, b.initializer(et, value))
		default:
			i, ok := b.constIndex(en.Child(0))
			if !ok {
				continue
			}
			et, ok := b.elementType(t, i)
			if !ok {
				b.errorf(diag.DeclBadInitializer, el, "array index in initializer exceeds array bounds")
				continue
			}
			agg.AddAt(i, b.initializer(et, value))
		}
	}
}

// vectorLiteral builds (floatN)(...). A single scalar broadcasts; otherwise
// the components must cover the vector exactly.
func (b *builder) vectorLiteral(id ast.NodeID) *literal.Vector {
	in := b.env.Types
	n := b.node(id)
	t := b.typeRef(n.Child(0))
	v := literal.NewVector(in, t, id)
	width, ok := in.ElementCount(t)
	if in.Kind(t) != types.KindVector || !ok {
		b.errorf(diag.DeclBadInitializer, id, "'"+in.String(t)+"' is not a vector type")
		return v
	}
	elemT := in.Scalar(in.MustLookup(in.Unqualified(t)).Scalar)
	for _, el := range n.Children[1:] {
		e := b.expr(el)
		text := ast.PrintExpr(b.f, el)
		if in.Kind(e.Type) == types.KindVector {
			v.AddSub(literal.NewVectorSub(in, el, e, text))
			continue
		}
		if c, err := b.env.Folder.Cast(elemT, e); err == nil {
			e = c
		}
		v.Add(literal.NewExpr(el, e, text))
	}
	if !v.IsScalarDefined() && v.Next() != width {
		b.errorf(diag.DeclBadInitializer, id, "vector literal of type '"+in.String(t)+"' has "+
			strconv.Itoa(v.Next())+" components, expected "+strconv.Itoa(width))
	}
	b.m.Annotations.Set(id, etype.Value(t))
	return v
}

// completeArray sizes `T a[]` after its initializer.
func (b *builder) completeArray(t types.TypeID, lit literal.Literal) types.TypeID {
	in := b.env.Types
	tt, ok := in.Lookup(t)
	if !ok || tt.Kind != types.KindArray || tt.Count != types.ArrayUnsized {
		return t
	}
	switch l := lit.(type) {
	case *literal.Aggregate:
		return in.ArrayOf(tt.Elem, uint32(l.Len()))
	case *literal.Expr:
		if s, ok := l.Value.StringValue(); ok {
			return in.ArrayOf(tt.Elem, uint32(len(s)+1))
		}
	}
	return t
}

type parented interface {
	SetParents([]symbols.SymbolID)
}

// setParents attaches the symbols referenced by an initializer to its literal.
func setParents(lit literal.Literal, refs []symbols.SymbolID) {
	p, ok := lit.(parented)
	if !ok || len(refs) == 0 {
		return
	}
	var out []symbols.SymbolID
	seen := make(map[symbols.SymbolID]struct{}, len(refs))
	for _, r := range refs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	p.SetParents(out)
}
