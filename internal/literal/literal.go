// Package literal models initializers: plain expressions, brace-enclosed
// aggregates and OpenCL vector literals.
package literal

import (
	"strconv"
	"strings"

	"c2c/internal/ast"
	"c2c/internal/etype"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// Literal is one initializer value.
type Literal interface {
	Type() types.TypeID
	Node() ast.NodeID
	// Parents are the symbols the literal's text depends on.
	Parents() []symbols.SymbolID
	IsConstant() bool
	String() string
}

type base struct {
	typ     types.TypeID
	node    ast.NodeID
	parents []symbols.SymbolID
}

func (b *base) Type() types.TypeID              { return b.typ }
func (b *base) Node() ast.NodeID                { return b.node }
func (b *base) Parents() []symbols.SymbolID     { return b.parents }
func (b *base) SetParents(p []symbols.SymbolID) { b.parents = p }

// Expr is a scalar initializer expression.
type Expr struct {
	base
	Value etype.EnrichedType
	Text  string
}

// NewExpr wraps an expression node with its annotation and source text.
func NewExpr(node ast.NodeID, value etype.EnrichedType, text string) *Expr {
	return &Expr{base: base{typ: value.Type, node: node}, Value: value, Text: text}
}

func (e *Expr) IsConstant() bool { return e.Value.IsConstant() }
func (e *Expr) String() string   { return e.Text }

// Aggregate is a brace-enclosed initializer. Elements are sparse: positions
// never written hold nil. The element vector starts at the element or field
// count of the type when known and grows on writes past its end.
type Aggregate struct {
	base
	elems    []Literal
	next     int
	variable bool // some element is not constant
}

// NewAggregate sizes the literal after t: fields of a complete record,
// elements of a sized array or of a vector.
func NewAggregate(in *types.Interner, t types.TypeID, node ast.NodeID) *Aggregate {
	a := &Aggregate{base: base{typ: t, node: node}}
	if n, ok := in.ElementCount(t); ok {
		a.elems = make([]Literal, n)
	}
	return a
}

func (a *Aggregate) grow(n int) {
	if n > len(a.elems) {
		a.elems = append(a.elems, make([]Literal, n-len(a.elems))...)
	}
}

func (a *Aggregate) note(l Literal) {
	if !l.IsConstant() {
		a.variable = true
	}
}

// Add stores l at the current position and advances it.
func (a *Aggregate) Add(l Literal) {
	a.grow(a.next + 1)
	a.elems[a.next] = l
	a.next++
	a.note(l)
}

// AddAt stores l at index i; following Adds continue after it.
func (a *Aggregate) AddAt(i int, l Literal) {
	a.next = i
	a.Add(l)
}

// AddRange stores l at every index of [lo, hi] (GNU range designator).
func (a *Aggregate) AddRange(lo, hi int, l Literal) {
	a.grow(hi + 1)
	for i := lo; i <= hi; i++ {
		a.elems[i] = l
	}
	a.next = hi + 1
	a.note(l)
}

// Next is the position the next Add writes to.
func (a *Aggregate) Next() int { return a.next }

// Len is the current element count, holes included.
func (a *Aggregate) Len() int { return len(a.elems) }

// AtIndex returns the element stored at i, nil for holes and indexes past
// the end.
func (a *Aggregate) AtIndex(i int) Literal {
	if i < 0 || i >= len(a.elems) {
		return nil
	}
	return a.elems[i]
}

// IsConstant holds when every stored element is constant.
func (a *Aggregate) IsConstant() bool { return !a.variable }

func (a *Aggregate) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, l := range a.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if l == nil {
			sb.WriteString("<null>")
		} else {
			sb.WriteString(l.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// Vector is an OpenCL vector literal such as (float4)(a.xy, 0, 1).
// Definition elements count what was written: a sub-vector fills several
// positions but is one definition element.
type Vector struct {
	Aggregate
	defs int
}

func NewVector(in *types.Interner, t types.TypeID, node ast.NodeID) *Vector {
	return &Vector{Aggregate: *NewAggregate(in, t, node)}
}

func (v *Vector) Add(l Literal) {
	v.defs++
	v.Aggregate.Add(l)
}

func (v *Vector) AddAt(i int, l Literal) {
	v.defs++
	v.Aggregate.AddAt(i, l)
}

func (v *Vector) AddRange(lo, hi int, l Literal) {
	if hi >= lo {
		v.defs += hi - lo + 1
	}
	v.Aggregate.AddRange(lo, hi, l)
}

// AddSub stores a sub-vector over the next s.Width positions.
func (v *Vector) AddSub(s *VectorSub) {
	v.defs++
	lo := v.next
	v.Aggregate.AddRange(lo, lo+s.Width-1, s)
}

// Definitions is the number of definition elements written.
func (v *Vector) Definitions() int { return v.defs }

// IsScalarDefined reports a single scalar broadcast to every element.
func (v *Vector) IsScalarDefined() bool {
	if v.defs != 1 {
		return false
	}
	_, ok := v.AtIndex(0).(*Expr)
	return ok
}

// IsElementwise reports one definition element per vector element.
func (v *Vector) IsElementwise() bool {
	return v.defs == v.Len()
}

// IsComplexDefined reports literals mixing sub-vectors with scalars.
func (v *Vector) IsComplexDefined() bool {
	return v.defs < v.Len() && !v.IsScalarDefined()
}

func (v *Vector) String() string { return "Vector = " + v.Aggregate.String() }

// VectorSub is a vector-typed expression spanning Width positions of an
// enclosing vector literal.
type VectorSub struct {
	base
	Value etype.EnrichedType
	Width int
	Text  string
}

func NewVectorSub(in *types.Interner, node ast.NodeID, value etype.EnrichedType, text string) *VectorSub {
	n, ok := in.ElementCount(value.Type)
	if !ok || n < 1 {
		n = 1
	}
	return &VectorSub{base: base{typ: value.Type, node: node}, Value: value, Width: n, Text: text}
}

func (s *VectorSub) IsConstant() bool { return s.Value.IsConstant() }
func (s *VectorSub) String() string   { return s.Text }

// Describe renders l with its constness and parents for listings.
func Describe(l Literal) string {
	var sb strings.Builder
	sb.WriteString(l.String())
	if l.IsConstant() {
		sb.WriteString(", compile-time constant")
	} else {
		sb.WriteString(", Non compile-time constant")
	}
	if len(l.Parents()) == 0 {
		sb.WriteString(", [no parent]")
		return sb.String()
	}
	parts := make([]string, 0, len(l.Parents()))
	for _, p := range l.Parents() {
		parts = append(parts, strconv.FormatUint(uint64(p), 10))
	}
	sb.WriteString(", parents=[" + strings.Join(parts, " ") + "]")
	return sb.String()
}
