// Package build walks the syntax tree of one module and produces its symbol
// table, the enriched-type annotations of its expressions and its
// initializer literals.
package build

import (
	"c2c/internal/abi"
	"c2c/internal/ast"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/literal"
	"c2c/internal/source"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// Env is the instance-wide state a module build reads and extends.
type Env struct {
	Arena    *symbols.Arena
	Types    *types.Interner
	Folder   *etype.Folder // bound to the source ABI
	Reporter diag.Reporter
	Dialect  abi.Dialect

	// Reentrant classifies file-scope state for extraction.
	Reentrant                 bool
	AllowFunctionRedefinition bool
}

// Module is the outcome of building one module.
type Module struct {
	ID          source.ModuleID
	Name        string
	File        *ast.File
	Table       *symbols.Table
	Annotations *etype.Annotations
	// Literals lists initializer literals in declaration order.
	Literals []literal.Literal
	// Inits maps an object to its initializer literal.
	Inits map[symbols.SymbolID]literal.Literal
}

type builder struct {
	env *Env
	m   *Module
	tab *symbols.Table
	f   *ast.File

	// refs collects symbols referenced by the expression being walked;
	// initializer literals take their parents from it.
	refs []symbols.SymbolID
	// candidates are file-scope objects and local statics in first-seen order.
	candidates []*symbols.Symbol
	fn         *symbols.Symbol
	// params keeps resolved parameter types so a definition declares its
	// parameters without walking their type expressions twice.
	params map[ast.NodeID]param
}

type param struct {
	typ  types.TypeID
	deps deps
}

// Build constructs the symbol table of module f.
func Build(env *Env, id source.ModuleID, f *ast.File) *Module {
	m := &Module{
		ID:          id,
		Name:        f.Module,
		File:        f,
		Annotations: etype.NewAnnotations(),
		Inits:       make(map[symbols.SymbolID]literal.Literal),
	}
	m.Table = symbols.NewTable(id, f.Module, env.Arena, env.Types, env.Reporter)
	m.Table.AllowFunctionRedefinition = env.AllowFunctionRedefinition

	b := &builder{env: env, m: m, tab: m.Table, f: f, params: make(map[ast.NodeID]param)}
	if env.Dialect == abi.DialectOpenCL {
		b.declareBuiltins()
	}
	root := f.Node(f.Root)
	for _, child := range root.Children {
		b.topLevel(child)
	}
	if env.Reentrant {
		b.classify()
	}
	return m
}

func (b *builder) node(id ast.NodeID) *ast.Node { return b.f.Node(id) }

func (b *builder) loc(id ast.NodeID) source.Loc {
	line := uint32(0)
	if n := b.node(id); n != nil {
		line = n.Line
	}
	return source.Loc{Module: b.m.ID, Line: line}
}

func (b *builder) site(id ast.NodeID) symbols.Site {
	s := symbols.Site{Module: b.m.ID, IDNode: id, DeclNode: id}
	if n := b.node(id); n != nil {
		s.Line = n.Line
	}
	return s
}

func (b *builder) errorf(code diag.Code, at ast.NodeID, msg string) {
	diag.ReportError(b.env.Reporter, code, b.loc(at), msg).Emit()
}

func (b *builder) warnf(code diag.Code, at ast.NodeID, msg string) {
	diag.ReportWarning(b.env.Reporter, code, b.loc(at), msg).Emit()
}

func (b *builder) topLevel(id ast.NodeID) {
	n := b.node(id)
	switch n.Kind {
	case ast.KindDecl:
		b.declaration(id)
	case ast.KindFuncDef:
		b.functionDefinition(id)
	default:
		b.errorf(diag.InputBadTree, id, "unexpected "+n.Kind.String()+" at file scope")
	}
}

// storage folds the written specifiers and reports duplicates.
func (b *builder) storage(id ast.NodeID) symbols.SpecResult {
	res := symbols.FromSpecs(b.node(id).Specs)
	for _, d := range res.Duplicates {
		b.warnf(diag.DeclDuplicateSpecifier, id, "duplicate '"+d.String()+"'")
	}
	if res.Multiple {
		b.errorf(diag.DeclMultipleStorage, id, "multiple storage classes in declaration specifiers")
	}
	return res
}

// linkParents records that sym's text depends on deps.
func (b *builder) linkParents(sym *symbols.Symbol, deps []symbols.SymbolID) {
	for _, d := range deps {
		b.env.Arena.LinkParent(sym.ID, d)
	}
}
