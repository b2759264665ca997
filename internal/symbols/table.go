package symbols

import (
	"fmt"

	"c2c/internal/diag"
	"c2c/internal/source"
	"c2c/internal/types"
)

// Table is the symbol directory of one module. It owns the module's scopes
// and name maps; symbols themselves live in the instance arena.
type Table struct {
	Module source.ModuleID
	Name   string

	// AllowFunctionRedefinition downgrades a second function definition to a warning.
	AllowFunctionRedefinition bool

	arena    *Arena
	types    *types.Interner
	reporter diag.Reporter

	scopes  []Scope
	cur     ScopeID
	unnamed int

	names    []entry // ordinary name space, first-insertion order
	tags     []entry
	flushed  []SymbolID
	created  []SymbolID
	mangling int

	instanceData  []SymbolID
	externs       []SymbolID
	extractedTags []SymbolID
}

type entry struct {
	scope ScopeID
	name  string
}

// NewTable creates a module table with an open top-level scope.
func NewTable(module source.ModuleID, name string, arena *Arena, typesIn *types.Interner, reporter diag.Reporter) *Table {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	t := &Table{
		Module:   module,
		Name:     name,
		arena:    arena,
		types:    typesIn,
		reporter: reporter,
		scopes:   make([]Scope, 1, 16), // index 0 reserved for NoScopeID
	}
	t.scopes = append(t.scopes, Scope{
		names: make(map[string]SymbolID),
		tags:  make(map[string]SymbolID),
	})
	t.cur = 1
	return t
}

func (t *Table) Arena() *Arena           { return t.arena }
func (t *Table) Types() *types.Interner  { return t.types }
func (t *Table) Reporter() diag.Reporter { return t.reporter }

// NewSymbol allocates a symbol in the current scope with the default payload
// of its kind. It is not visible to lookups until Add.
func (t *Table) NewSymbol(kind Kind, name string, storage Storage, typ types.TypeID, site Site) *Symbol {
	site.Module = t.Module
	sym := Symbol{
		Kind:    kind,
		Name:    name,
		Depth:   t.Depth(),
		Type:    typ,
		Storage: storage,
		Site:    site,
	}
	switch kind {
	case KindObject:
		sym.Object = &ObjectInfo{}
	case KindFunction:
		sym.Function = &FunctionInfo{Attrs: DefaultFunctionAttrs()}
	case KindMangledSet:
		sym.Mangled = &MangledSet{}
	case KindTypedef:
		sym.Typedef = &TypedefInfo{}
	case KindStructTag, KindUnionTag, KindEnumTag:
		sym.Tag = &TagInfo{}
	case KindEnumConst:
		sym.EnumConst = &EnumConstInfo{}
	}
	p := t.arena.New(sym)
	t.created = append(t.created, p.ID)
	return p
}

// Declare creates a symbol in the current scope and merges it with any
// earlier declaration of the same name.
func (t *Table) Declare(kind Kind, name string, storage Storage, typ types.TypeID, site Site) *Symbol {
	sym := t.NewSymbol(kind, name, storage, typ, site)
	t.Add(sym)
	return sym
}

// Add inserts sym into the current scope, applying the redeclaration rules
// of its kind. Earlier compatible declarations become brothers of sym.
func (t *Table) Add(sym *Symbol) {
	sym.Depth = t.Depth()
	switch sym.Kind {
	case KindObject:
		t.addObject(sym)
	case KindFunction:
		t.addFunction(sym)
	case KindTypedef:
		t.addTypedef(sym)
	case KindEnumConst:
		t.addEnumConst(sym)
	case KindStructTag, KindUnionTag, KindEnumTag:
		t.addTag(sym)
	default:
		panic(fmt.Sprintf("symbols: cannot add %s symbol", sym.Kind))
	}
}

// Lookup resolves name in the ordinary name space from the innermost scope
// outwards.
func (t *Table) Lookup(name string) *Symbol {
	for id := t.cur; id.IsValid(); id = t.scope(id).Parent {
		if s, ok := t.scope(id).names[name]; ok {
			return t.arena.Get(s)
		}
	}
	return nil
}

// LookupTop resolves name in the top-level scope only.
func (t *Table) LookupTop(name string) *Symbol {
	if s, ok := t.scope(1).names[name]; ok {
		return t.arena.Get(s)
	}
	return nil
}

// LookupTag resolves a struct/union/enum tag from the innermost scope outwards.
func (t *Table) LookupTag(name string) *Symbol {
	for id := t.cur; id.IsValid(); id = t.scope(id).Parent {
		if s, ok := t.scope(id).tags[name]; ok {
			return t.arena.Get(s)
		}
	}
	return nil
}

// LookupTagInScope resolves a tag declared in the current scope only.
func (t *Table) LookupTagInScope(name string) *Symbol {
	if s, ok := t.scope(t.cur).tags[name]; ok {
		return t.arena.Get(s)
	}
	return nil
}

// Mangle returns a module-unique name "_M<module>_<k>_<name>" used when a
// declaration must move out of its scope.
func (t *Table) Mangle(name string) string {
	t.mangling++
	return fmt.Sprintf("_M%d_%d_%s", t.Module, t.mangling, name)
}

// NewName returns a fresh module-unique identifier "_N<module>_<k>".
func (t *Table) NewName() string {
	t.mangling++
	return fmt.Sprintf("_N%d_%d", t.Module, t.mangling)
}

// Symbols returns the representative symbol of every ordinary name, in
// first-declaration order across all scopes.
func (t *Table) Symbols() []*Symbol {
	return t.collect(t.names, func(sc *Scope) map[string]SymbolID { return sc.names })
}

// Tags returns the representative symbol of every tag.
func (t *Table) Tags() []*Symbol {
	return t.collect(t.tags, func(sc *Scope) map[string]SymbolID { return sc.tags })
}

func (t *Table) collect(order []entry, ns func(*Scope) map[string]SymbolID) []*Symbol {
	out := make([]*Symbol, 0, len(order))
	for _, e := range order {
		if id, ok := ns(t.scope(e.scope))[e.name]; ok {
			out = append(out, t.arena.Get(id))
		}
	}
	return out
}

// Flushed returns declarations superseded by a later brother.
func (t *Table) Flushed() []*Symbol { return t.get(t.flushed) }

// Created returns every symbol allocated by this table in id order.
func (t *Table) Created() []*Symbol { return t.get(t.created) }

func (t *Table) get(ids []SymbolID) []*Symbol {
	out := make([]*Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.arena.Get(id))
	}
	return out
}

// functionLabels flattens functions and mangled overload sets.
func (t *Table) functionLabels(keep func(*Symbol) bool) []*Symbol {
	var out []*Symbol
	for _, s := range t.Symbols() {
		switch s.Kind {
		case KindFunction:
			if keep(s) {
				out = append(out, s)
			}
		case KindMangledSet:
			for _, o := range s.Mangled.Overloads {
				if keep(o) {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// FunctionDefinitions lists function definitions, overloads included.
func (t *Table) FunctionDefinitions() []*Symbol {
	return t.functionLabels(func(s *Symbol) bool { return s.Function.Definition })
}

// FunctionPrototypes lists function declarations without a body.
func (t *Table) FunctionPrototypes() []*Symbol {
	return t.functionLabels(func(s *Symbol) bool { return !s.Function.Definition })
}

// Kernels lists kernel function definitions.
func (t *Table) Kernels() []*Symbol {
	return t.functionLabels(func(s *Symbol) bool { return s.Function.Definition && s.Function.Kernel })
}

// Definitions lists non-extern objects and function definitions, the
// entities this module provides.
func (t *Table) Definitions() []*Symbol {
	return t.partition(true)
}

// References lists extern objects and function prototypes, the entities
// this module expects another module to provide.
func (t *Table) References() []*Symbol {
	return t.partition(false)
}

func (t *Table) partition(definitions bool) []*Symbol {
	var out []*Symbol
	for _, s := range t.Symbols() {
		switch s.Kind {
		case KindObject:
			if s.IsExtern() != definitions {
				out = append(out, s)
			}
		case KindFunction:
			if s.Function.Definition == definitions {
				out = append(out, s)
			}
		case KindMangledSet:
			for _, o := range s.Mangled.Overloads {
				if o.Function.Definition == definitions {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// AddInstanceData records a top-level object extracted into shared instance data.
func (t *Table) AddInstanceData(s *Symbol) { t.instanceData = append(t.instanceData, s.ID) }

// AddExtern records an extern declaration that may reference instance data.
func (t *Table) AddExtern(s *Symbol) { t.externs = append(t.externs, s.ID) }

// AddExtractedTag records a tag needed by the instance-data declarations.
func (t *Table) AddExtractedTag(s *Symbol) {
	for _, id := range t.extractedTags {
		if id == s.ID {
			return
		}
	}
	t.extractedTags = append(t.extractedTags, s.ID)
}

func (t *Table) InstanceData() []*Symbol  { return t.get(t.instanceData) }
func (t *Table) Externs() []*Symbol       { return t.get(t.externs) }
func (t *Table) ExtractedTags() []*Symbol { return t.get(t.extractedTags) }
