package link

import (
	"c2c/internal/diag"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// ExtractionLinker links reentrant modules. File-scope state of every module
// moves into one shared instance-data aggregate; functions link as in
// standard mode.
type ExtractionLinker struct {
	*Linker
	instanceData []*symbols.Symbol
	resolved     map[symbols.SymbolID]*symbols.Symbol
}

func NewExtractionLinker(opts Options, arena *symbols.Arena, typesIn *types.Interner, reporter diag.Reporter) *ExtractionLinker {
	return &ExtractionLinker{
		Linker:   NewLinker(opts, arena, typesIn, reporter),
		resolved: make(map[symbols.SymbolID]*symbols.Symbol),
	}
}

// Run processes the instance data and externs collected by every module
// build, in module order, then links functions.
func (x *ExtractionLinker) Run() *Global {
	var data, externs []*symbols.Symbol
	for _, m := range x.modules {
		data = append(data, m.table.InstanceData()...)
		externs = append(externs, m.table.Externs()...)
	}
	x.ProcessInstanceData(data, externs)
	x.ProcessFunction()
	return x.global
}

// ProcessInstanceData builds the ordered instance-data list and resolves
// every extern declaration to its owner. A resolved extern is marked
// NoDeclaration: its text disappears from the regenerated module.
func (x *ExtractionLinker) ProcessInstanceData(instanceData, externs []*symbols.Symbol) {
	for _, s := range instanceData {
		x.arena.SetProgramInternal(s.ID)
		name := s.CurrentName()
		if prev := x.global.Lookup(name); prev != nil {
			if prev != s {
				x.multipleDefinition(name, s, prev)
			}
			continue
		}
		x.global.insert(name, s)
		x.instanceData = append(x.instanceData, s)
	}

	for _, e := range externs {
		owner := x.global.Lookup(e.CurrentName())
		switch {
		case owner == nil || owner.Kind != symbols.KindObject:
			if x.opts.Required {
				diag.ReportError(x.reporter, diag.LinkNoInstanceOwner, e.Site.Loc(),
					"extern '"+e.Name+"' does not reference any instance data").Emit()
			}
			continue
		case !x.types.Compatible(owner.Type, e.Type):
			x.conflict(diag.LinkConflictingTypes, e, owner, "conflicting types for '"+e.Name+"'")
			continue
		}
		x.arena.LinkBrother(owner.ID, e.ID)
		x.arena.SetProgramInternal(owner.ID)
		group := x.arena.Brothers(e.ID)
		for _, id := range group {
			if b := x.arena.Get(id); b.IsExtern() {
				b.NoDeclaration = true
			}
		}
		x.resolved[e.ID] = owner
	}
}

// ProcessFunction links function definitions across modules, mangled
// overloads included, then marks prototypes satisfied inside the program.
func (x *ExtractionLinker) ProcessFunction() {
	for _, m := range x.modules {
		for _, f := range m.table.FunctionDefinitions() {
			if f.IsBuiltin() {
				continue
			}
			x.arena.SetProgramInternal(f.ID)
			if !f.IsModuleVisibility() {
				x.merge(f)
			}
		}
	}
	for _, m := range x.modules {
		for _, f := range m.table.FunctionPrototypes() {
			if f.IsBuiltin() || !f.IsInProgramScope() {
				continue
			}
			name := x.key(f)
			def := x.global.Lookup(name)
			if def == nil {
				if x.opts.Required {
					diag.ReportError(x.reporter, diag.LinkUnresolved, f.Site.Loc(),
						"undefined reference to '"+name+"'").Emit()
				}
				continue
			}
			x.merge(f)
			if x.arena.AreBrothers(def.ID, f.ID) {
				x.arena.SetProgramInternal(f.ID)
			}
		}
	}
}

// InstanceData lists the instance data in first-seen order; it is the field
// order of the shared aggregate.
func (x *ExtractionLinker) InstanceData() []*symbols.Symbol { return x.instanceData }

// InitializedInstanceData lists the instance data carrying an initializer,
// in the same order.
func (x *ExtractionLinker) InitializedInstanceData() []*symbols.Symbol {
	var out []*symbols.Symbol
	for _, s := range x.instanceData {
		if s.HasInitializer() {
			out = append(out, s)
		}
	}
	return out
}

// Owner returns the instance data an extern declaration was resolved to.
func (x *ExtractionLinker) Owner(extern *symbols.Symbol) *symbols.Symbol {
	return x.resolved[extern.ID]
}

// ExtractedTags merges the tags and typedefs the instance data needs, first
// module first; a name already taken by an earlier module is skipped.
func (x *ExtractionLinker) ExtractedTags() []*symbols.Symbol {
	var out []*symbols.Symbol
	seen := make(map[string]bool)
	for _, m := range x.modules {
		for _, t := range m.table.ExtractedTags() {
			key := t.Kind.String() + " " + t.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}
