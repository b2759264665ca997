package build

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// expr annotates the expression id and returns its enriched type.
func (b *builder) expr(id ast.NodeID) etype.EnrichedType {
	e := b.exprKind(id)
	b.m.Annotations.Set(id, e)
	return e
}

func (b *builder) exprKind(id ast.NodeID) etype.EnrichedType {
	n := b.node(id)
	in := b.env.Types
	f := b.env.Folder
	if n == nil {
		return etype.Value(in.Builtins().Invalid)
	}
	switch n.Kind {
	case ast.KindIntLit:
		return b.intLiteral(id, n.Text)
	case ast.KindFloatLit:
		return b.floatLiteral(id, n.Text)
	case ast.KindCharLit:
		return b.charLiteral(id, n.Text)
	case ast.KindStringLit:
		return etype.Str(in.ArrayOf(in.Builtins().Char, uint32(len(n.Text)+1)), n.Text)
	case ast.KindIdent:
		return b.ident(id, n.Text)
	case ast.KindBinary, ast.KindAssign:
		x := b.expr(n.Child(0))
		y := b.expr(n.Child(1))
		op := n.Text
		if n.Kind == ast.KindAssign && op == "" {
			op = "="
		}
		return b.folded(id)(f.Binary(op, x, y))
	case ast.KindUnary:
		return b.folded(id)(f.Unary(n.Text, b.expr(n.Child(0))))
	case ast.KindCast:
		t := b.typeRef(n.Child(0))
		return b.folded(id)(f.Cast(t, b.expr(n.Child(1))))
	case ast.KindSizeof:
		var t types.TypeID
		if n.Has(ast.FlagTypeOperand) {
			t = b.typeRef(n.Child(0))
		} else {
			t = b.expr(n.Child(0)).Type
		}
		e, err := f.Sizeof(t)
		if err != nil {
			b.errorf(diag.DeclIncompleteType, id, "invalid application of 'sizeof' to incomplete type '"+in.String(t)+"'")
		}
		return e
	case ast.KindCall:
		return b.call(id, n)
	case ast.KindMember:
		return b.member(id, n)
	case ast.KindIndex:
		base := b.expr(n.Child(0))
		idx := b.expr(n.Child(1))
		sum, err := f.Binary("+", base, idx)
		if err != nil {
			// 2[a] is as valid as a[2]
			sum, err = f.Binary("+", idx, base)
		}
		if err != nil {
			return b.folded(id)(sum, err)
		}
		return b.folded(id)(f.Unary("*", sum))
	case ast.KindCond:
		return b.conditional(n)
	case ast.KindVectorLit:
		v := b.vectorLiteral(id)
		return etype.Value(v.Type())
	case ast.KindInitList, ast.KindDesignated:
		b.errorf(diag.DeclBadInitializer, id, "braced initializer is not an expression")
		return etype.Value(in.Builtins().Invalid)
	}
	b.errorf(diag.InputBadTree, id, "expected an expression, found "+n.Kind.String())
	return etype.Value(in.Builtins().Invalid)
}

// typeRef resolves a type operand; the tags and typedefs it names count as
// references of the enclosing expression.
func (b *builder) typeRef(id ast.NodeID) types.TypeID {
	var d deps
	t := b.typeOf(id, &d, false)
	b.refs = append(b.refs, d...)
	return t
}

// folded reports a folding error at id and passes the annotation through.
func (b *builder) folded(id ast.NodeID) func(etype.EnrichedType, error) etype.EnrichedType {
	return func(e etype.EnrichedType, err error) etype.EnrichedType {
		switch {
		case err == nil:
		case errors.Is(err, etype.ErrDivisionByZero):
			b.warnf(diag.DeclDivisionByZero, id, "division by zero")
		case errors.Is(err, etype.ErrShiftCount):
			b.warnf(diag.DeclInvalidOperands, id, err.Error())
		default:
			b.errorf(diag.DeclInvalidOperands, id, err.Error())
		}
		return e
	}
}

func (b *builder) ident(id ast.NodeID, name string) etype.EnrichedType {
	sym := b.tab.Lookup(name)
	if sym == nil {
		b.errorf(diag.DeclUndeclared, id, "'"+name+"' undeclared")
		return etype.Value(b.env.Types.Builtins().Int)
	}
	if sym.Kind == symbols.KindTypedef {
		b.errorf(diag.DeclInvalidOperands, id, "unexpected type name '"+name+"': expected expression")
		return etype.Value(sym.Type)
	}
	b.refs = append(b.refs, sym.ID)
	return b.env.Folder.Ref(sym)
}

// intLiteral types an integer constant after C's suffix and radix rules.
func (b *builder) intLiteral(id ast.NodeID, text string) etype.EnrichedType {
	a := b.env.Folder.ABI
	digits := strings.TrimRight(text, "uUlL")
	suffix := strings.ToLower(text[len(digits):])
	v, ok := new(big.Int).SetString(digits, 0)
	if !ok {
		// the parser hands C spelling; a leading 0 means octal
		if len(digits) > 1 && digits[0] == '0' {
			v, ok = new(big.Int).SetString(digits[1:], 8)
		}
	}
	if !ok {
		b.errorf(diag.InputBadTree, id, "invalid integer constant '"+text+"'")
		return etype.Value(b.env.Types.Builtins().Int)
	}
	decimal := digits == "0" || digits[0] != '0'
	unsigned := strings.Contains(suffix, "u")
	longs := strings.Count(suffix, "l")

	var candidates []abi.Scalar
	switch {
	case longs >= 2:
		candidates = []abi.Scalar{abi.LongLong, abi.ULongLong}
	case longs == 1:
		candidates = []abi.Scalar{abi.Long, abi.ULong, abi.LongLong, abi.ULongLong}
	default:
		candidates = []abi.Scalar{abi.Int, abi.UInt, abi.Long, abi.ULong, abi.LongLong, abi.ULongLong}
	}
	for _, s := range candidates {
		if !a.Supports(s) {
			continue
		}
		if unsigned && s.IsSigned() {
			continue
		}
		if decimal && !unsigned && !s.IsSigned() {
			continue
		}
		if a.Fits(s, v) {
			return etype.Int(b.env.Types.Scalar(s), v)
		}
	}
	b.warnf(diag.DeclInvalidOperands, id, "integer constant '"+text+"' is too large for its type")
	widest := abi.ULong
	if a.Supports(abi.ULongLong) {
		widest = abi.ULongLong
	}
	return etype.Int(b.env.Types.Scalar(widest), v)
}

func (b *builder) floatLiteral(id ast.NodeID, text string) etype.EnrichedType {
	a := b.env.Folder.ABI
	s := abi.Double
	digits := text
	switch {
	case strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F"):
		s, digits = abi.Float, text[:len(text)-1]
	case strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L"):
		s, digits = abi.LongDouble, text[:len(text)-1]
	}
	for !a.Supports(s) && s != abi.Float {
		s--
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		b.errorf(diag.InputBadTree, id, "invalid floating constant '"+text+"'")
	}
	return etype.Float(b.env.Types.Scalar(s), v)
}

// charLiteral folds 'c' to an int constant, as C types character constants.
func (b *builder) charLiteral(id ast.NodeID, text string) etype.EnrichedType {
	intT := b.env.Types.Builtins().Int
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
	r, _, tail, err := strconv.UnquoteChar(inner, '\'')
	if err != nil || tail != "" {
		b.errorf(diag.InputBadTree, id, "invalid character constant "+text)
		return etype.Value(intT)
	}
	v := int64(r)
	if r < 0x100 && b.env.Folder.ABI.Min(abi.Char).Sign() < 0 {
		v = int64(int8(r))
	}
	return etype.Int64(intT, v)
}

func (b *builder) call(id ast.NodeID, n *ast.Node) etype.EnrichedType {
	in := b.env.Types
	callee := b.node(n.Child(0))
	args := make([]etype.EnrichedType, 0, len(n.Children)-1)
	for _, a := range n.Children[1:] {
		args = append(args, b.expr(a))
	}

	if callee != nil && callee.Kind == ast.KindIdent {
		if set := b.tab.Lookup(callee.Text); set != nil && set.Kind == symbols.KindMangledSet {
			info := types.FuncInfo{Result: in.Builtins().Void}
			for _, a := range args {
				info.Params = append(info.Params, b.adjustParam(in.Unqualified(a.Type)))
			}
			if len(info.Params) == 0 {
				info.VoidList = true
			}
			match := set.Mangled.Equivalent(in, in.Func(info))
			if match == nil {
				b.errorf(diag.DeclNoMatchingOverload, id, "no matching overload for call to '"+callee.Text+"'")
				b.m.Annotations.Set(n.Child(0), etype.Value(set.Type))
				return etype.Value(in.Builtins().Int)
			}
			b.refs = append(b.refs, match.ID)
			b.m.Annotations.Set(n.Child(0), b.env.Folder.Ref(match))
			res, _ := in.FuncInfo(match.Type)
			return etype.Value(res.Result)
		}
	}

	fn := b.expr(n.Child(0))
	t := fn.Type
	if elem, ok := in.Lookup(t); ok && elem.Kind == types.KindPointer {
		t = elem.Elem
	}
	info, ok := in.FuncInfo(in.Unqualified(t))
	if !ok {
		b.errorf(diag.DeclInvalidOperands, id, "called object is not a function")
		return etype.Value(in.Builtins().Int)
	}
	if !info.Unspecified && !info.Variadic && len(info.Params) != len(args) {
		b.errorf(diag.DeclInvalidOperands, id, "wrong number of arguments to function call, expected "+
			strconv.Itoa(len(info.Params))+", have "+strconv.Itoa(len(args)))
	}
	return etype.Value(info.Result)
}

func (b *builder) member(id ast.NodeID, n *ast.Node) etype.EnrichedType {
	in := b.env.Types
	x := b.expr(n.Child(0))
	t := x.Type
	lvalue := x.LValue
	if n.Has(ast.FlagArrow) {
		tt, ok := in.Lookup(in.Unqualified(t))
		if !ok || tt.Kind != types.KindPointer {
			b.errorf(diag.DeclInvalidOperands, id, "member reference type '"+in.String(t)+"' is not a pointer")
			return etype.Value(in.Builtins().Int)
		}
		t, lvalue = tt.Elem, true
	}
	if in.Kind(t) == types.KindVector {
		if n.Has(ast.FlagArrow) {
			x = etype.EnrichedType{Type: t, LValue: true}
		}
		return b.folded(id)(b.env.Folder.Select(x, n.Text))
	}
	rec, ok := in.Record(in.Unqualified(t))
	if !ok {
		b.errorf(diag.DeclUnknownMember, id, "request for member '"+n.Text+"' in something not a structure or union")
		return etype.Value(in.Builtins().Int)
	}
	if !rec.Complete {
		b.errorf(diag.DeclIncompleteType, id, "dereferencing incomplete type '"+in.String(t)+"'")
		return etype.Value(in.Builtins().Int)
	}
	for _, fld := range rec.Fields {
		if fld.Name == n.Text {
			return etype.EnrichedType{Type: fld.Type, LValue: lvalue, Symbol: x.Symbol}
		}
	}
	b.errorf(diag.DeclUnknownMember, id, "'"+in.String(t)+"' has no member named '"+n.Text+"'")
	return etype.Value(in.Builtins().Int)
}

func (b *builder) conditional(n *ast.Node) etype.EnrichedType {
	in := b.env.Types
	c := b.expr(n.Child(0))
	x := b.expr(n.Child(1))
	y := b.expr(n.Child(2))
	t := x.Type
	if in.IsArithmetic(x.Type) && in.IsArithmetic(y.Type) {
		t = b.env.Folder.UsualArithmetic(x.Type, y.Type)
	}
	if v, ok := truth(c); ok && x.IsConstant() && y.IsConstant() {
		pick := y
		if v {
			pick = x
		}
		if out, err := b.env.Folder.Cast(t, pick); err == nil {
			return out
		}
	}
	return etype.Value(t)
}

func truth(e etype.EnrichedType) (bool, bool) {
	if v, ok := e.IntegralValue(); ok {
		return v.Sign() != 0, true
	}
	if v, ok := e.FloatingValue(); ok {
		return v != 0, true
	}
	return false, false
}
