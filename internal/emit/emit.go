// Package emit writes the shared instance-data files of a reentrant build:
// the header declaring struct DATA_STRUCTURE and its companion main stub.
package emit

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"c2c/internal/ast"
	"c2c/internal/source"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

const banner = "/*\n   File generated automatically, do not modify\n*/\n\n"

// DefaultHeader is the file name of the instance-data header.
const DefaultHeader = "DATA.h"

// Layout is the result of an extraction link, ready to be written.
type Layout struct {
	Types *types.Interner
	// Files resolves initializer text; keyed by the module of the symbol site.
	Files map[source.ModuleID]*ast.File

	Tags         []*symbols.Symbol
	InstanceData []*symbols.Symbol
	Initialized  []*symbols.Symbol
}

// WriteHeader writes the instance-data header.
func WriteHeader(w io.Writer, l *Layout) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(banner)

	bw.WriteString("/* Extracted type tags */\n")
	for _, t := range l.Tags {
		bw.WriteString(l.tagDeclaration(t))
		bw.WriteString("\n")
	}
	bw.WriteString("\n/* Extracted instance data */\n")
	bw.WriteString("struct DATA_STRUCTURE {\n")
	for _, s := range l.InstanceData {
		bw.WriteString("  " + l.member(s.Type, s.CurrentName(), "") + ";\n")
	}
	bw.WriteString("};\n")
	bw.WriteString("#define DATA (*((struct DATA_STRUCTURE *)_this))\n")

	if len(l.Initialized) != 0 {
		bw.WriteString("#define INIT_DATA {")
		for i, s := range l.Initialized {
			if i == 0 {
				bw.WriteString("\\\n")
			} else {
				bw.WriteString(",\\\n")
			}
			bw.WriteString("           ." + s.CurrentName() + " = " + l.initText(s))
		}
		bw.WriteString("\\\n")
		bw.WriteString("         }\n")
	}
	return bw.Flush()
}

// WriteMain writes the stub that allocates the instance data and enters the
// reentrant runtime.
func WriteMain(w io.Writer, header string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(banner)
	bw.WriteString("#include \"" + header + "\"\n\n")
	bw.WriteString("#define DATA my_data_structure\n\n")
	bw.WriteString("static struct DATA_STRUCTURE my_data_structure\n")
	bw.WriteString("#ifdef INIT_DATA\n")
	bw.WriteString(" = INIT_DATA\n")
	bw.WriteString("#endif\n")
	bw.WriteString(";\n\n")
	bw.WriteString("extern int __reentrant_run(void *, int , char * [ ]);\n")
	bw.WriteString("int main( int argc , char * argv [ ]) {\n" +
		"  return(__reentrant_run(&my_data_structure,argc,argv));\n" +
		"}\n")
	return bw.Flush()
}

// Paths returns <dir>/<header> and its companion <dir>/<header>.c.
func Paths(dir, header string) (headerPath, mainPath string) {
	if header == "" {
		header = DefaultHeader
	}
	headerPath = filepath.Join(dir, header)
	return headerPath, headerPath + ".c"
}

func (l *Layout) initText(s *symbols.Symbol) string {
	f := l.Files[s.Site.Module]
	if f == nil || !s.Object.Init.IsValid() {
		return "0"
	}
	return ast.PrintExpr(f, s.Object.Init)
}

// tagDeclaration renders the declaration that introduced a tag or typedef.
func (l *Layout) tagDeclaration(s *symbols.Symbol) string {
	in := l.Types
	switch s.Kind {
	case symbols.KindTypedef:
		return "typedef " + in.Declarator(s.Type, s.CurrentName()) + ";"
	case symbols.KindStructTag, symbols.KindUnionTag, symbols.KindEnumTag:
		if !in.IsComplete(s.Type) {
			return in.String(s.Type) + ";"
		}
		return l.body(s.Type, "") + ";"
	}
	return "/* " + s.CurrentName() + " */"
}

// body renders a complete struct, union or enum with its member list.
// Anonymous nested records are expanded in place.
func (l *Layout) body(t types.TypeID, indent string) string {
	in := l.Types
	var sb strings.Builder
	if e, ok := in.Enum(t); ok {
		sb.WriteString("enum ")
		if e.Tag != "" {
			sb.WriteString(e.Tag + " ")
		}
		sb.WriteString("{")
		for i, c := range e.Constants {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" " + c.Name + " = " + strconv.FormatInt(c.Value, 10))
		}
		sb.WriteString(" }")
		return sb.String()
	}

	rec, _ := in.Record(t)
	if rec.Union {
		sb.WriteString("union ")
	} else {
		sb.WriteString("struct ")
	}
	if rec.Tag != "" {
		sb.WriteString(rec.Tag + " ")
	}
	sb.WriteString("{\n")
	for _, f := range rec.Fields {
		sb.WriteString(indent + "  " + l.member(f.Type, f.Name, indent+"  ") + ";\n")
	}
	sb.WriteString(indent + "}")
	return sb.String()
}

// member declares name with type t; anonymous records are expanded in place.
func (l *Layout) member(t types.TypeID, name, indent string) string {
	if rec, ok := l.Types.Record(t); ok && rec.Tag == "" {
		if name == "" {
			return l.body(t, indent)
		}
		return l.body(t, indent) + " " + name
	}
	return l.Types.Declarator(t, name)
}
