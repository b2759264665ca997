package ast

import (
	"strconv"
	"strings"
)

// PrintExpr renders an expression or initializer as C text. Type operands
// (casts, sizeof, vector literals) are rendered from their type expressions.
func PrintExpr(f *File, id NodeID) string {
	var sb strings.Builder
	p := printer{f: f, sb: &sb}
	p.expr(id)
	return sb.String()
}

type printer struct {
	f  *File
	sb *strings.Builder
}

func (p *printer) expr(id NodeID) {
	n := p.f.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case KindIntLit, KindFloatLit, KindCharLit, KindIdent:
		p.sb.WriteString(n.Text)
	case KindStringLit:
		p.sb.WriteString(strconv.Quote(n.Text))
	case KindBinary, KindAssign:
		p.sb.WriteByte('(')
		p.expr(n.Child(0))
		if n.Text == "," {
			p.sb.WriteString(", ")
		} else {
			p.sb.WriteString(" " + n.Text + " ")
		}
		p.expr(n.Child(1))
		p.sb.WriteByte(')')
	case KindUnary:
		switch n.Text {
		case "post++", "post--":
			p.expr(n.Child(0))
			p.sb.WriteString(strings.TrimPrefix(n.Text, "post"))
		default:
			p.sb.WriteString(n.Text)
			p.expr(n.Child(0))
		}
	case KindCast:
		p.sb.WriteByte('(')
		p.typ(n.Child(0))
		p.sb.WriteByte(')')
		p.expr(n.Child(1))
	case KindSizeof:
		p.sb.WriteString("sizeof(")
		if n.Has(FlagTypeOperand) {
			p.typ(n.Child(0))
		} else {
			p.expr(n.Child(0))
		}
		p.sb.WriteByte(')')
	case KindCall:
		p.expr(n.Child(0))
		p.sb.WriteByte('(')
		p.list(n.Children[1:])
		p.sb.WriteByte(')')
	case KindMember:
		p.expr(n.Child(0))
		if n.Has(FlagArrow) {
			p.sb.WriteString("->")
		} else {
			p.sb.WriteByte('.')
		}
		p.sb.WriteString(n.Text)
	case KindIndex:
		p.expr(n.Child(0))
		p.sb.WriteByte('[')
		p.expr(n.Child(1))
		p.sb.WriteByte(']')
	case KindCond:
		p.sb.WriteByte('(')
		p.expr(n.Child(0))
		p.sb.WriteString(" ? ")
		p.expr(n.Child(1))
		p.sb.WriteString(" : ")
		p.expr(n.Child(2))
		p.sb.WriteByte(')')
	case KindInitList:
		p.sb.WriteByte('{')
		p.list(n.Children)
		p.sb.WriteByte('}')
	case KindDesignated:
		switch {
		case n.Text != "":
			p.sb.WriteString("." + n.Text)
		case n.Has(FlagRange):
			p.sb.WriteByte('[')
			p.expr(n.Child(0))
			p.sb.WriteString(" ... ")
			p.expr(n.Child(1))
			p.sb.WriteByte(']')
		default:
			p.sb.WriteByte('[')
			p.expr(n.Child(0))
			p.sb.WriteByte(']')
		}
		p.sb.WriteString(" = ")
		p.expr(n.Children[len(n.Children)-1])
	case KindVectorLit:
		p.sb.WriteByte('(')
		p.typ(n.Child(0))
		p.sb.WriteString(")(")
		p.list(n.Children[1:])
		p.sb.WriteByte(')')
	}
}

func (p *printer) list(ids []NodeID) {
	for i, c := range ids {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.expr(c)
	}
}

// typ renders an abstract type name; only the forms allowed in casts.
func (p *printer) typ(id NodeID) {
	n := p.f.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case KindTypeName:
		if n.Has(FlagConst) {
			p.sb.WriteString("const ")
		}
		p.sb.WriteString(n.Text)
	case KindTypePointer:
		p.typ(n.Child(0))
		p.sb.WriteString(" *")
	case KindTypeStruct:
		p.sb.WriteString("struct " + n.Text)
	case KindTypeUnion:
		p.sb.WriteString("union " + n.Text)
	case KindTypeEnum:
		p.sb.WriteString("enum " + n.Text)
	default:
		p.sb.WriteString(n.Kind.String())
	}
}
