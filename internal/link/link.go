// Package link merges the symbol tables of the modules of one program.
//
// Linker resolves program-scope functions and objects in standard builds;
// ExtractionLinker lays out the shared instance data of reentrant builds.
package link

import (
	"c2c/internal/diag"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// Options control how strictly the program must close.
type Options struct {
	// Required turns unresolved references and multiple definitions into
	// errors. Otherwise multiple definitions are warnings and unresolved
	// externs stay external.
	Required bool
}

type module struct {
	name  string
	table *symbols.Table
}

// Global is the program-scope table produced by a link: one representative
// per output name, in first-insertion order.
type Global struct {
	byName map[string]*symbols.Symbol
	order  []string
}

func newGlobal() *Global {
	return &Global{byName: make(map[string]*symbols.Symbol)}
}

// Lookup returns the representative of an output name.
func (g *Global) Lookup(name string) *symbols.Symbol { return g.byName[name] }

// Symbols returns the representatives in first-insertion order.
func (g *Global) Symbols() []*symbols.Symbol {
	out := make([]*symbols.Symbol, 0, len(g.order))
	for _, n := range g.order {
		out = append(out, g.byName[n])
	}
	return out
}

func (g *Global) Len() int { return len(g.order) }

func (g *Global) insert(name string, s *symbols.Symbol) {
	if _, ok := g.byName[name]; !ok {
		g.order = append(g.order, name)
	}
	g.byName[name] = s
}

// Linker is the standard-mode program linker. Modules merge in the order
// they were added; the order decides which site a conflict reports first.
type Linker struct {
	opts     Options
	arena    *symbols.Arena
	types    *types.Interner
	reporter diag.Reporter
	modules  []module
	global   *Global
	reported map[string]bool
}

func NewLinker(opts Options, arena *symbols.Arena, typesIn *types.Interner, reporter diag.Reporter) *Linker {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Linker{
		opts:     opts,
		arena:    arena,
		types:    typesIn,
		reporter: reporter,
		global:   newGlobal(),
		reported: make(map[string]bool),
	}
}

// Add queues the table of one module.
func (l *Linker) Add(name string, table *symbols.Table) {
	l.modules = append(l.modules, module{name: name, table: table})
}

// Global returns the program-scope table built so far.
func (l *Linker) Global() *Global { return l.global }

// key is the name a symbol is linked under: the mangled name of an
// overload, the current name otherwise.
func (l *Linker) key(s *symbols.Symbol) string {
	return symbols.OutputName(s, l.types)
}

// Run links every queued module and returns the program-scope table.
func (l *Linker) Run() *Global {
	for _, m := range l.modules {
		for _, s := range m.table.Definitions() {
			if s.IsBuiltin() {
				continue
			}
			s.ProgramInternal = true
			if s.IsInProgramScope() {
				l.merge(s)
			}
		}
	}
	for _, m := range l.modules {
		for _, s := range m.table.References() {
			if !s.IsBuiltin() && s.IsInProgramScope() {
				l.merge(s)
			}
		}
	}
	l.resolve()
	return l.global
}

// merge inserts s under its link name, joining it to an earlier compatible
// declaration of the same entity.
func (l *Linker) merge(s *symbols.Symbol) {
	name := l.key(s)
	prev := l.global.Lookup(name)
	if prev == nil {
		l.global.insert(name, s)
		return
	}
	if prev == s || l.arena.AreBrothers(prev.ID, s.ID) {
		return
	}
	if prev.Kind != s.Kind {
		l.conflict(diag.LinkConflictingTypes, s, prev, "'"+s.Name+"' redeclared as different kind of symbol")
		return
	}
	if !l.types.Compatible(prev.Type, s.Type) {
		l.conflict(diag.LinkConflictingTypes, s, prev, "conflicting types for '"+s.Name+"'")
		return
	}
	if prev.IsDefinition() && s.IsDefinition() {
		l.multipleDefinition(name, s, prev)
		return
	}
	l.arena.LinkBrother(prev.ID, s.ID)
	if s.IsDefinition() && !prev.IsDefinition() {
		l.global.insert(name, s)
	}
}

// resolve marks resolved entities program-internal and reports what stays
// undefined.
func (l *Linker) resolve() {
	for _, s := range l.global.Symbols() {
		if s.IsDefinition() {
			l.arena.SetProgramInternal(s.ID)
			continue
		}
		if l.opts.Required {
			diag.ReportError(l.reporter, diag.LinkUnresolved, s.Site.Loc(),
				"undefined reference to '"+s.CurrentName()+"'").Emit()
		}
	}
}

func (l *Linker) conflict(code diag.Code, s, prev *symbols.Symbol, msg string) {
	diag.ReportError(l.reporter, code, s.Site.Loc(), msg).
		WithNote(prev.Site.Loc(), "previous declaration of '"+prev.Name+"' was here").
		Emit()
}

// multipleDefinition reports the first duplicate of each name only.
func (l *Linker) multipleDefinition(name string, s, prev *symbols.Symbol) {
	if l.reported[name] {
		return
	}
	l.reported[name] = true
	if l.opts.Required {
		diag.ReportError(l.reporter, diag.LinkMultipleDefinition, s.Site.Loc(),
			"multiple definition of '"+prev.Name+"'").
			WithNote(prev.Site.Loc(), "first defined here").
			Emit()
		return
	}
	diag.ReportWarning(l.reporter, diag.LinkMultipleDefinition, s.Site.Loc(),
		"multiple definition of '"+prev.Name+"' (no error forced by option)").
		WithNote(prev.Site.Loc(), "first defined here").
		Emit()
}
