package symbols

import (
	"fmt"
	"strings"
)

// Describe renders sym with its relations in the listing format used by
// "c2c dump".
func (t *Table) Describe(sym *Symbol) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name=%s (original=%s), depth=%d", sym.CurrentName(), sym.Name, sym.Depth)
	if sym.Type.IsValid() {
		sb.WriteString(", type=" + t.types.String(sym.Type))
	}
	sb.WriteString(", storage=" + sym.Storage.String())

	if b := t.arena.Brothers(sym.ID); len(b) == 0 {
		sb.WriteString(", no brothers")
	} else {
		sb.WriteString(", brothers=" + idList(b, sym.ID))
	}
	if p := t.arena.Parents(sym.ID); len(p) == 0 {
		sb.WriteString(", no parent")
	} else {
		sb.WriteString(", parents=" + idList(p, NoSymbolID))
	}
	if sym.ProgramInternal {
		sb.WriteString(", program internal")
	}
	if sym.Kind == KindFunction {
		if sym.Function.CompilerBuiltin {
			sb.WriteString(" [builtin]")
		}
		if sym.Function.ExternalBuiltin {
			sb.WriteString(" [ext builtin]")
		}
		if sym.Function.Mangled {
			sb.WriteString(" [mangled]")
		}
	}
	return sb.String()
}

func idList(ids []SymbolID, skip SymbolID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			parts = append(parts, fmt.Sprint(uint32(id)))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// String lists the ordinary names, the tags and the superseded declarations.
func (t *Table) String() string {
	var sb strings.Builder
	section := func(title string, syms []*Symbol) {
		sb.WriteString("---- " + title + " ----\n")
		for _, s := range syms {
			fmt.Fprintf(&sb, "%-8s %s\n", s.Kind, t.Describe(s))
			if s.Kind == KindMangledSet {
				for _, o := range s.Mangled.Overloads {
					fmt.Fprintf(&sb, "  %-6s %s\n", o.Kind, t.Describe(o))
				}
			}
		}
	}
	fmt.Fprintf(&sb, "module %s\n", t.Name)
	section("ORDINARY", t.Symbols())
	section("TAG", t.Tags())
	section("FLUSHED", t.Flushed())
	return sb.String()
}
