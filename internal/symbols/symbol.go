package symbols

import (
	"fmt"

	"c2c/internal/ast"
	"c2c/internal/source"
	"c2c/internal/types"
)

// Kind enumerates symbol variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindObject
	KindFunction
	KindMangledSet // pseudo symbol owning the overloads of one source name
	KindTypedef
	KindStructTag
	KindUnionTag
	KindEnumTag
	KindEnumConst
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindMangledSet:
		return "mangled"
	case KindTypedef:
		return "typedef"
	case KindStructTag:
		return "struct"
	case KindUnionTag:
		return "union"
	case KindEnumTag:
		return "enum"
	case KindEnumConst:
		return "enumerator"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsTag reports struct/union/enum tags.
func (k Kind) IsTag() bool {
	return k == KindStructTag || k == KindUnionTag || k == KindEnumTag
}

// IsFunctionLike reports functions and mangled overload sets.
func (k Kind) IsFunctionLike() bool {
	return k == KindFunction || k == KindMangledSet
}

// Site is where a declaration was written.
type Site struct {
	Module   source.ModuleID
	Line     uint32
	IDNode   ast.NodeID
	DeclNode ast.NodeID
}

// Loc converts the site to a diagnostic location.
func (s Site) Loc() source.Loc {
	return source.Loc{Module: s.Module, Line: s.Line}
}

// Symbol is one declaration. Shared fields live here; per-kind data lives in
// exactly one of the payload pointers.
type Symbol struct {
	ID      SymbolID
	Kind    Kind
	Name    string // as written
	Rename  string // set by Arena.Rename, shared by all brothers
	Depth   int    // 0 = top level
	Type    types.TypeID
	Storage Storage
	Site    Site

	ProgramInternal bool
	// NoDeclaration marks a declaration absorbed into instance data; the
	// emitter drops it.
	NoDeclaration bool

	Object    *ObjectInfo
	Function  *FunctionInfo
	Mangled   *MangledSet
	Typedef   *TypedefInfo
	Tag       *TagInfo
	EnumConst *EnumConstInfo
}

// ObjectInfo is the payload of a variable or parameter.
type ObjectInfo struct {
	Init  ast.NodeID // initializer, NoNodeID when absent
	Param bool
}

// FunctionAttrs are the OpenCL function attributes.
type FunctionAttrs struct {
	VecTypeHint       types.TypeID // NoTypeID means the default int
	WorkGroupSizeHint [3]int
	ReqdWorkGroupSize [3]int
	StackSize         int64
}

// DefaultFunctionAttrs returns attributes with every value unset (-1).
func DefaultFunctionAttrs() FunctionAttrs {
	return FunctionAttrs{
		WorkGroupSizeHint: [3]int{-1, -1, -1},
		ReqdWorkGroupSize: [3]int{-1, -1, -1},
		StackSize:         -1,
	}
}

// KernelPrototype lists the parameters of a kernel entry point.
type KernelPrototype struct {
	Params     []SymbolID
	ParamNodes []ast.NodeID
}

// FunctionInfo is the payload of a function label.
type FunctionInfo struct {
	Definition      bool
	CompilerBuiltin bool
	ExternalBuiltin bool
	Mangled         bool
	Kernel          bool
	KernelProto     *KernelPrototype
	Attrs           FunctionAttrs
}

// TypedefInfo is the payload of a typedef.
type TypedefInfo struct {
	ExternalBuiltin bool
}

// TagInfo is the payload of a struct/union/enum tag.
type TagInfo struct {
	Definition bool       // the declaration carried a member list
	Children   []SymbolID // enum constants owned by an enum tag
}

// EnumConstInfo is the payload of an enumeration constant.
type EnumConstInfo struct {
	Tag   SymbolID
	Value int64
}

// CurrentName is the rename when set, the written name otherwise.
func (s *Symbol) CurrentName() string {
	if s.Rename != "" {
		return s.Rename
	}
	return s.Name
}

func (s *Symbol) IsTopLevel() bool { return s.Depth == 0 }

func (s *Symbol) IsExtern() bool { return s.Storage.IsExtern() }
func (s *Symbol) IsStatic() bool { return s.Storage.IsStatic() }
func (s *Symbol) IsInline() bool { return s.Storage.IsInline() }

// IsInProgramScope reports symbols visible to other modules: top level and
// neither static nor inline.
func (s *Symbol) IsInProgramScope() bool {
	return s.IsTopLevel() && !s.IsStatic() && !s.IsInline()
}

// IsModuleVisibility reports static or inline symbols.
func (s *Symbol) IsModuleVisibility() bool {
	return s.IsStatic() || s.IsInline()
}

// IsDefinition reports function definitions and non-extern objects.
func (s *Symbol) IsDefinition() bool {
	switch s.Kind {
	case KindFunction:
		return s.Function.Definition
	case KindObject:
		return !s.IsExtern()
	case KindStructTag, KindUnionTag, KindEnumTag:
		return s.Tag.Definition
	}
	return false
}

// IsPrototype reports function declarations without a body.
func (s *Symbol) IsPrototype() bool {
	return s.Kind == KindFunction && !s.Function.Definition
}

// IsBuiltin reports symbols supplied by the environment rather than a module.
func (s *Symbol) IsBuiltin() bool {
	switch s.Kind {
	case KindFunction:
		return s.Function.CompilerBuiltin || s.Function.ExternalBuiltin
	case KindTypedef:
		return s.Typedef.ExternalBuiltin
	}
	return false
}

// ReferencesCompileTimeAllocatedEntity reports objects with static storage
// duration (top level, static or extern) and every function.
func (s *Symbol) ReferencesCompileTimeAllocatedEntity() bool {
	switch s.Kind {
	case KindObject:
		return s.IsTopLevel() || s.IsStatic() || s.IsExtern()
	case KindFunction, KindMangledSet:
		return true
	}
	return false
}

// HasInitializer reports objects carrying an initializer.
func (s *Symbol) HasInitializer() bool {
	return s.Kind == KindObject && s.Object.Init.IsValid()
}

// MessageName is the symbol as diagnostics name it.
func (s *Symbol) MessageName() string {
	switch s.Kind {
	case KindFunction, KindMangledSet:
		return "function '" + s.CurrentName() + "'"
	case KindTypedef:
		return "typedef '" + s.CurrentName() + "'"
	case KindStructTag:
		return "struct '" + s.Name + "'"
	case KindUnionTag:
		return "union '" + s.Name + "'"
	case KindEnumTag:
		return "enum '" + s.Name + "'"
	}
	return "symbol '" + s.Name + "'"
}

// Short is the compact "id/name/depth/" form.
func (s *Symbol) Short() string {
	return fmt.Sprintf("%d/%s/%d/", s.ID, s.CurrentName(), s.Depth)
}
