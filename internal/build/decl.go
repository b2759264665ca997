package build

import (
	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/literal"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// declaration handles `specs type name [= init] [attrs]` at any depth.
func (b *builder) declaration(id ast.NodeID) {
	n := b.node(id)
	res := b.storage(id)
	var d deps
	typeNode := n.Child(0)
	tagOnly := n.Text == ""
	t := b.typeOf(typeNode, &d, tagOnly && b.isTagNode(typeNode))
	if tagOnly {
		// struct S { ... }; or struct S;
		return
	}

	switch {
	case res.Storage.IsTypedef():
		b.typedef(id, n, t, d)
	case b.env.Types.Kind(t) == types.KindFunction:
		b.function(id, n, res, t, d, false)
	default:
		b.object(id, n, res, t, d)
	}
}

func (b *builder) isTagNode(id ast.NodeID) bool {
	n := b.node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindTypeStruct, ast.KindTypeUnion, ast.KindTypeEnum:
		return !n.Has(ast.FlagHasBody)
	}
	return false
}

func (b *builder) typedef(id ast.NodeID, n *ast.Node, t types.TypeID, d deps) {
	sym := b.tab.NewSymbol(symbols.KindTypedef, n.Text, symbols.StorageTypedef, t, b.site(id))
	sym.Typedef.ExternalBuiltin = n.Has(ast.FlagBuiltin)
	b.linkParents(sym, d)
	b.tab.Add(sym)
}

func (b *builder) object(id ast.NodeID, n *ast.Node, res symbols.SpecResult, t types.TypeID, d deps) {
	in := b.env.Types
	storage := res.Storage
	if res.Kernel {
		b.errorf(diag.DeclBadAttribute, id, "'__kernel' applies only to functions, not to '"+n.Text+"'")
	}
	if in.Kind(t) == types.KindVoid {
		b.errorf(diag.DeclIncompleteType, id, "variable '"+n.Text+"' declared void")
	}
	for _, a := range n.Children[2:] {
		b.warnf(diag.DeclBadAttribute, a, "'"+b.node(a).Text+"' attribute ignored")
	}

	initNode := n.Child(1)
	if initNode.IsValid() && storage.IsExtern() {
		if !b.tab.IsTopLevel() {
			b.errorf(diag.DeclBadInitializer, id, "'"+n.Text+"' has both 'extern' and initializer")
			initNode = ast.NoNodeID
		} else {
			b.warnf(diag.DeclBadInitializer, id, "'"+n.Text+"' initialized and declared 'extern'")
			storage &^= symbols.StorageExtern
		}
	}

	var lit literal.Literal
	if initNode.IsValid() {
		saved := b.refs
		b.refs = nil
		lit = b.initializer(t, initNode)
		setParents(lit, b.refs)
		staticStorage := b.tab.IsTopLevel() || storage.IsStatic()
		if staticStorage && lit != nil && !lit.IsConstant() {
			b.errorf(diag.DeclNotConstant, initNode, "initializer element is not constant")
		}
		b.refs = append(saved, b.refs...)
		t = b.completeArray(t, lit)
	}

	sym := b.tab.NewSymbol(symbols.KindObject, n.Text, storage, t, b.site(id))
	sym.Object.Init = initNode
	if !storage.IsExtern() && !b.tab.IsTopLevel() && !in.IsComplete(t) && in.Kind(t) != types.KindVoid {
		b.errorf(diag.DeclIncompleteType, id, "storage size of '"+n.Text+"' isn't known")
	}
	b.linkParents(sym, d)
	b.tab.Add(sym)

	if lit != nil {
		b.m.Literals = append(b.m.Literals, lit)
		b.m.Inits[sym.ID] = lit
	}
	if b.env.Reentrant && (sym.IsTopLevel() || sym.IsStatic() || sym.IsExtern()) {
		b.candidates = append(b.candidates, sym)
	}
}

// function declares a prototype or, with definition set, the label of a
// function definition.
func (b *builder) function(id ast.NodeID, n *ast.Node, res symbols.SpecResult, t types.TypeID, d deps, definition bool) *symbols.Symbol {
	if !b.tab.IsTopLevel() && (res.Storage.IsStatic() || res.Storage.IsAuto() || res.Storage.IsRegister()) {
		b.errorf(diag.DeclMultipleStorage, id, "invalid storage class for function '"+n.Text+"'")
	}
	sym := b.tab.NewSymbol(symbols.KindFunction, n.Text, res.Storage, t, b.site(id))
	fn := sym.Function
	fn.Definition = definition
	fn.Kernel = res.Kernel
	if n.Has(ast.FlagBuiltin) {
		fn.ExternalBuiltin = true
	}
	for _, a := range n.Children[2:] {
		b.attribute(a, fn)
	}
	if fn.Kernel {
		if info, _ := b.env.Types.FuncInfo(t); info.Result != b.env.Types.Builtins().Void {
			b.errorf(diag.DeclBadAttribute, id, "kernel '"+n.Text+"' must return void")
		}
	}
	b.linkParents(sym, d)
	b.tab.Add(sym)
	return sym
}

// functionDefinition declares the label, then the parameters and the body
// in the function scope.
func (b *builder) functionDefinition(id ast.NodeID) {
	n := b.node(id)
	res := b.storage(id)
	var d deps
	fnNode := n.Child(0)
	t := b.typeOf(fnNode, &d, false)
	if b.env.Types.Kind(t) != types.KindFunction {
		b.errorf(diag.InputBadTree, id, "function definition of '"+n.Text+"' without a function type")
		return
	}
	sym := b.function(id, n, res, t, d, true)

	b.tab.EnterScope(n.Text)
	outer := b.fn
	b.fn = sym
	if sym.Function.Kernel {
		sym.Function.KernelProto = &symbols.KernelPrototype{}
	}
	for _, p := range b.node(fnNode).Children[1:] {
		pn := b.node(p)
		if pn.Text == "" {
			b.errorf(diag.DeclBadInitializer, p, "parameter name omitted")
			continue
		}
		info := b.params[p]
		ps := symbols.FromSpecs(pn.Specs)
		if ps.Storage&^symbols.StorageRegister != 0 {
			b.errorf(diag.DeclMultipleStorage, p, "invalid storage class for parameter '"+pn.Text+"'")
		}
		param := b.tab.NewSymbol(symbols.KindObject, pn.Text, ps.Storage&symbols.StorageRegister, info.typ, b.site(p))
		param.Object.Param = true
		b.linkParents(param, info.deps)
		b.tab.Add(param)
		if kp := sym.Function.KernelProto; kp != nil {
			kp.Params = append(kp.Params, param.ID)
			kp.ParamNodes = append(kp.ParamNodes, p)
		}
	}
	if body := b.node(n.Child(1)); body != nil {
		// the body shares the parameter scope
		for _, item := range body.Children {
			b.stmt(item)
		}
	}
	b.fn = outer
	b.tab.ExitScope()
}

// attribute applies one __attribute__ of a function label.
func (b *builder) attribute(id ast.NodeID, fn *symbols.FunctionInfo) {
	n := b.node(id)
	switch n.Text {
	case "vec_type_hint":
		var d deps
		t := b.typeOf(n.Child(0), &d, false)
		switch b.env.Types.Kind(t) {
		case types.KindInt, types.KindFloat, types.KindVector:
			fn.Attrs.VecTypeHint = t
		default:
			b.errorf(diag.DeclBadAttribute, id, "invalid type '"+b.env.Types.String(t)+"' in vec_type_hint")
		}
	case "work_group_size_hint", "reqd_work_group_size":
		if len(n.Children) != 3 {
			b.errorf(diag.DeclBadAttribute, id, "'"+n.Text+"' attribute requires exactly 3 arguments")
			return
		}
		var dims [3]int
		for i, a := range n.Children {
			v, ok := b.attrInt(a, n.Text)
			if !ok {
				return
			}
			dims[i] = int(v)
		}
		if n.Text == "reqd_work_group_size" {
			fn.Attrs.ReqdWorkGroupSize = dims
		} else {
			fn.Attrs.WorkGroupSizeHint = dims
		}
	case "stack_size":
		if len(n.Children) != 1 {
			b.errorf(diag.DeclBadAttribute, id, "'stack_size' attribute requires exactly 1 argument")
			return
		}
		if v, ok := b.attrInt(n.Children[0], n.Text); ok {
			fn.Attrs.StackSize = v
		}
	default:
		b.warnf(diag.DeclBadAttribute, id, "'"+n.Text+"' attribute ignored")
	}
}

func (b *builder) attrInt(id ast.NodeID, attr string) (int64, bool) {
	e := b.expr(id)
	v, ok := e.IntegralValue()
	if !ok || v.Sign() < 0 || !v.IsInt64() {
		b.errorf(diag.DeclBadAttribute, id, "'"+attr+"' attribute argument is not a non-negative integer constant")
		return 0, false
	}
	return v.Int64(), true
}
