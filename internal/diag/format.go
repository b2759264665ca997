package diag

import (
	"fmt"
	"io"
	"strings"

	"c2c/internal/source"
)

// Format renders one diagnostic as "module:line: <prefix>: message" followed by
// indented notes.
func Format(d Diagnostic, modules *source.ModuleSet) string {
	var sb strings.Builder
	writeLine(&sb, modules, d.Primary, d.Severity.Prefix(), d.Message)
	for _, n := range d.Notes {
		sb.WriteString("  ")
		writeLine(&sb, modules, n.Loc, "note", n.Msg)
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, modules *source.ModuleSet, loc source.Loc, prefix, msg string) {
	if modules != nil && (loc.IsValid() || loc.Line != 0) {
		sb.WriteString(modules.Format(loc))
		sb.WriteString(": ")
	}
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString(": ")
	}
	sb.WriteString(msg)
	sb.WriteByte('\n')
}

// WriteAll renders every diagnostic in order.
func WriteAll(w io.Writer, diags []Diagnostic, modules *source.ModuleSet) error {
	for _, d := range diags {
		if _, err := fmt.Fprint(w, Format(d, modules)); err != nil {
			return err
		}
	}
	return nil
}
