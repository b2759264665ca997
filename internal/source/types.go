package source

type (
	// ModuleID uniquely identifies an input module within a ModuleSet.
	ModuleID uint32
	// ModuleFlags encodes metadata about a module.
	ModuleFlags uint8
)

// NoModuleID marks a location that is not tied to any module (builtins, generated code).
const NoModuleID ModuleID = 0

const (
	// ModuleVirtual indicates the module tree was built in memory (tests, service requests).
	ModuleVirtual ModuleFlags = 1 << iota
	// ModuleBuiltin marks the pseudo-module holding compiler builtin declarations.
	ModuleBuiltin
)

// Module captures metadata for a single input module.
type Module struct {
	ID    ModuleID
	Name  string // имя как его видит пользователь (обычно путь к .c файлу)
	Path  string // путь к файлу синтаксического дерева, если есть
	Flags ModuleFlags
}
