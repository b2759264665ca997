package build

import (
	"c2c/internal/ast"
	"c2c/internal/diag"
)

func (b *builder) stmt(id ast.NodeID) {
	n := b.node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindDecl:
		b.declaration(id)
	case ast.KindFuncDef:
		b.errorf(diag.InputBadTree, id, "function definition of '"+n.Text+"' is not allowed here")
	case ast.KindCompound:
		b.tab.EnterScope("")
		for _, item := range n.Children {
			b.stmt(item)
		}
		b.tab.ExitScope()
	case ast.KindExprStmt, ast.KindReturn:
		if e := n.Child(0); e.IsValid() {
			b.expr(e)
		}
	case ast.KindIf:
		b.expr(n.Child(0))
		b.stmt(n.Child(1))
		b.stmt(n.Child(2))
	case ast.KindWhile:
		b.expr(n.Child(0))
		b.stmt(n.Child(1))
	case ast.KindFor:
		// for (int i = 0; ...) scopes i to the loop
		b.tab.EnterScope("")
		if init := b.node(n.Child(0)); init != nil {
			if init.Kind == ast.KindDecl {
				b.declaration(n.Child(0))
			} else {
				b.expr(n.Child(0))
			}
		}
		for _, e := range []ast.NodeID{n.Child(1), n.Child(2)} {
			if e.IsValid() {
				b.expr(e)
			}
		}
		b.stmt(n.Child(3))
		b.tab.ExitScope()
	default:
		if n.Kind.IsExpr() {
			b.expr(id)
			return
		}
		b.errorf(diag.InputBadTree, id, "unexpected "+n.Kind.String()+" in a function body")
	}
}
