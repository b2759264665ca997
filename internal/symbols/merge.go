package symbols

import (
	"c2c/internal/diag"
)

// insert makes sym the representative of its name in the current scope.
func (t *Table) insert(sym *Symbol) {
	sc := t.scope(t.cur)
	if _, ok := sc.names[sym.Name]; !ok {
		t.names = append(t.names, entry{scope: t.cur, name: sym.Name})
	}
	sc.names[sym.Name] = sym.ID
}

// promote replaces the representative prev by sym; prev stays reachable
// through Flushed and the brother group.
func (t *Table) promote(prev, sym *Symbol) {
	t.scope(t.cur).names[sym.Name] = sym.ID
	t.flushed = append(t.flushed, prev.ID)
}

func (t *Table) insertTag(sym *Symbol) {
	sc := t.scope(t.cur)
	if _, ok := sc.tags[sym.Name]; !ok {
		t.tags = append(t.tags, entry{scope: t.cur, name: sym.Name})
	}
	sc.tags[sym.Name] = sym.ID
}

func (t *Table) inScope(name string) *Symbol {
	if id, ok := t.scope(t.cur).names[name]; ok {
		return t.arena.Get(id)
	}
	return nil
}

func (t *Table) previous(code diag.Code, sym, prev *Symbol, msg string) {
	diag.ReportError(t.reporter, code, sym.Site.Loc(), msg).
		WithNote(prev.Site.Loc(), "previous declaration of '"+prev.Name+"' was here").
		Emit()
}

func (t *Table) differentSymbol(sym, prev *Symbol) {
	t.previous(diag.DeclDifferentSymbol, sym, prev, "'"+sym.Name+"' redeclared as different kind of symbol")
}

// linkage keeps the storage classes that fix an object's linkage or lifetime.
func linkage(s Storage) Storage {
	return s & (StorageStatic | StorageRegister | StorageAuto)
}

func (t *Table) addObject(sym *Symbol) {
	prev := t.inScope(sym.Name)
	if prev == nil {
		t.insert(sym)
		return
	}
	if prev.Kind != KindObject {
		t.differentSymbol(sym, prev)
		return
	}
	name := "'" + sym.Name + "'"
	if t.IsTopLevel() {
		if !sym.IsExtern() && linkage(prev.Storage) != 0 && linkage(prev.Storage) != linkage(sym.Storage) {
			t.previous(diag.DeclConflictingStorage, sym, prev, "conflicting declaration for "+name)
			return
		}
		if !prev.IsExtern() && linkage(sym.Storage) != 0 && linkage(sym.Storage) != linkage(prev.Storage) {
			t.previous(diag.DeclConflictingStorage, sym, prev, "conflicting declaration for "+name)
			return
		}
		if !t.types.Compatible(prev.Type, sym.Type) {
			t.previous(diag.DeclConflictingTypes, sym, prev, "conflicting type for "+name)
			return
		}
		if prev.HasInitializer() && sym.HasInitializer() {
			t.previous(diag.DeclRedeclared, sym, prev, "redefinition of "+name)
			return
		}
	} else {
		if !prev.IsExtern() && !sym.IsExtern() {
			if t.types.Compatible(prev.Type, sym.Type) {
				t.previous(diag.DeclRedeclared, sym, prev, "redeclaration of "+name)
			} else {
				t.previous(diag.DeclConflictingTypes, sym, prev, "conflicting type for "+name)
			}
			return
		}
		if !t.types.Compatible(prev.Type, sym.Type) {
			t.previous(diag.DeclConflictingTypes, sym, prev, "conflicting type for "+name)
			return
		}
	}

	switch {
	case prev.IsExtern() && !sym.IsExtern():
		t.promote(prev, sym)
	case !t.types.IsComplete(prev.Type) && t.types.IsComplete(sym.Type):
		t.promote(prev, sym)
	case sym.HasInitializer() && !prev.HasInitializer():
		// tentative definition completed by a later initialized one
		t.promote(prev, sym)
	}
	t.arena.LinkBrother(prev.ID, sym.ID)
}

func (t *Table) addFunction(sym *Symbol) {
	prev := t.inScope(sym.Name)
	if prev == nil {
		if sym.Function.Mangled {
			set := t.NewSymbol(KindMangledSet, sym.Name, 0, sym.Type, sym.Site)
			set.Depth = sym.Depth
			set.Mangled.Add(sym)
			t.insert(set)
			return
		}
		t.insert(sym)
		return
	}
	if !prev.Kind.IsFunctionLike() {
		t.differentSymbol(sym, prev)
		return
	}
	if (prev.Kind == KindMangledSet) != sym.Function.Mangled {
		t.previous(diag.DeclManglingMismatch, sym, prev, "Mixing mangled and unmangled function '"+sym.Name+"'")
		return
	}

	if prev.Kind == KindMangledSet {
		set := prev.Mangled
		match := set.Equivalent(t.types, sym.Type)
		if match == nil {
			set.Add(sym)
			return
		}
		t.mergeFunction(match, sym, func() {
			set.Replace(match, sym)
			t.flushed = append(t.flushed, match.ID)
		})
		return
	}

	if !t.types.Compatible(prev.Type, sym.Type) {
		t.previous(diag.DeclConflictingTypes, sym, prev, "conflicting type for '"+sym.Name+"'")
		return
	}
	t.mergeFunction(prev, sym, func() { t.promote(prev, sym) })
}

// mergeFunction joins sym to the matching declaration prev. A definition
// following a prototype takes its place through promote.
func (t *Table) mergeFunction(prev, sym *Symbol, promote func()) {
	if prev.Function.ExternalBuiltin && !sym.IsBuiltin() {
		diag.ReportFatal(t.reporter, diag.DeclBuiltinRedefinition, sym.Site.Loc(),
			"can not redefine '"+sym.Name+"', which is a compiler builtin function").Emit()
		return
	}
	switch {
	case !prev.Function.Definition && sym.Function.Definition:
		promote()
	case prev.Function.Definition && sym.Function.Definition:
		if t.AllowFunctionRedefinition {
			diag.ReportWarning(t.reporter, diag.DeclFunctionRedefinition, sym.Site.Loc(),
				"redefinition of function '"+sym.Name+"' (no error forced by option)").
				WithNote(prev.Site.Loc(), "previous declaration of '"+prev.Name+"' was here").
				Emit()
		} else {
			t.previous(diag.DeclFunctionRedefinition, sym, prev, "redefinition of function '"+sym.Name+"'")
		}
	}
	if prev.Function.Kernel || sym.Function.Kernel {
		prev.Function.Kernel, sym.Function.Kernel = true, true
	}
	t.arena.LinkBrother(prev.ID, sym.ID)
}

func (t *Table) addTag(sym *Symbol) {
	id, ok := t.scope(t.cur).tags[sym.Name]
	if !ok {
		t.insertTag(sym)
		return
	}
	prev := t.arena.Get(id)
	if prev.Kind != sym.Kind {
		diag.ReportError(t.reporter, diag.DeclDifferentSymbol, sym.Site.Loc(),
			sym.MessageName()+" redeclared as different kind of symbol").
			WithNote(prev.Site.Loc(), prev.MessageName()+" previously declared here").
			Emit()
		return
	}
	switch {
	case prev.Tag.Definition && sym.Tag.Definition:
		diag.ReportError(t.reporter, diag.DeclTagRedefinition, sym.Site.Loc(),
			"redefinition of "+sym.MessageName()).
			WithNote(prev.Site.Loc(), prev.MessageName()+" previously declared here").
			Emit()
		return
	case !prev.Tag.Definition && sym.Tag.Definition:
		t.scope(t.cur).tags[sym.Name] = sym.ID
		t.flushed = append(t.flushed, prev.ID)
	}
	t.arena.LinkBrother(prev.ID, sym.ID)
}

func (t *Table) addTypedef(sym *Symbol) {
	prev := t.inScope(sym.Name)
	if prev == nil {
		t.insert(sym)
		return
	}
	if prev.Kind == KindTypedef {
		t.previous(diag.DeclRedeclared, sym, prev, "redefinition of '"+sym.Name+"'")
		return
	}
	t.differentSymbol(sym, prev)
}

func (t *Table) addEnumConst(sym *Symbol) {
	prev := t.inScope(sym.Name)
	if prev == nil {
		t.insert(sym)
		return
	}
	if prev.Kind == KindEnumConst {
		t.previous(diag.DeclRedeclared, sym, prev, "redefinition of '"+sym.Name+"'")
		return
	}
	t.differentSymbol(sym, prev)
}
