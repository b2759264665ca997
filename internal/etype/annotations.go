package etype

import (
	"strconv"

	"c2c/internal/abi"
	"c2c/internal/ast"
)

// Annotations maps expression nodes of one module to their enriched types.
type Annotations struct {
	m map[ast.NodeID]EnrichedType
}

func NewAnnotations() *Annotations {
	return &Annotations{m: make(map[ast.NodeID]EnrichedType)}
}

func (a *Annotations) Set(id ast.NodeID, e EnrichedType) { a.m[id] = e }

func (a *Annotations) Get(id ast.NodeID) (EnrichedType, bool) {
	e, ok := a.m[id]
	return e, ok
}

func (a *Annotations) Len() int { return len(a.m) }

// Display renders a constant the way generated code spells it: integral
// values are wrapped to the width of their type here and only here.
func (f *Folder) Display(e EnrichedType) string {
	switch e.kind {
	case Integral:
		s, ok := f.scalar(e.Type)
		v := e.ival
		if ok {
			v = f.ABI.Wrap(s, v)
		}
		out := v.String()
		if ok && s.IsInteger() && s != abi.Bool && !s.IsSigned() {
			out += "u"
		}
		return out
	case Floating:
		return strconv.FormatFloat(e.fval, 'g', -1, 64)
	case String:
		return strconv.Quote(e.sval)
	}
	return ""
}
