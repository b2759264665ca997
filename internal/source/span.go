package source

import (
	"fmt"
)

// Loc points to a declaration site: the owning module and a 1-based line.
type Loc struct {
	Module ModuleID
	Line   uint32 // 0 если строка неизвестна
}

func (l Loc) IsValid() bool {
	return l.Module != NoModuleID
}

func (l Loc) String() string {
	return fmt.Sprintf("%d:%d", l.Module, l.Line)
}

// Before orders locations by module then line.
func (l Loc) Before(other Loc) bool {
	if l.Module != other.Module {
		return l.Module < other.Module
	}
	return l.Line < other.Line
}
