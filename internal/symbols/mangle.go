package symbols

import (
	"strconv"

	"c2c/internal/types"
)

// MangledSet owns the overloads of one function name. Overloads keep their
// insertion order; a definition replaces its prototype in place.
type MangledSet struct {
	Overloads []*Symbol
}

// Equivalent returns the overload whose parameter list matches candidate
// (a function type), or nil. The result type does not take part.
func (m *MangledSet) Equivalent(in *types.Interner, candidate types.TypeID) *Symbol {
	for _, o := range m.Overloads {
		if in.EquivalentForMangling(o.Type, candidate) {
			return o
		}
	}
	return nil
}

// Add appends an overload.
func (m *MangledSet) Add(sym *Symbol) {
	m.Overloads = append(m.Overloads, sym)
}

// Replace puts sym where old was.
func (m *MangledSet) Replace(old, sym *Symbol) {
	for i, o := range m.Overloads {
		if o == old {
			m.Overloads[i] = sym
			return
		}
	}
	m.Overloads = append(m.Overloads, sym)
}

// OutputName is the identifier a function is emitted under. Mangled
// functions get "_Z<len><name><params>", where <params> concatenates the
// unqualified parameter signatures; others keep their current name.
func OutputName(sym *Symbol, in *types.Interner) string {
	if sym.Kind != KindFunction || !sym.Function.Mangled {
		return sym.CurrentName()
	}
	name := sym.CurrentName()
	return "_Z" + strconv.Itoa(len(name)) + name + in.ParamSignature(sym.Type)
}
