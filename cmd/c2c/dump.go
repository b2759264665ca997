package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"c2c/internal/compiler"
	"c2c/internal/driver"
	"c2c/internal/link"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <tree>...",
	Short: "Print the symbol tables of module trees",
	Long: `Build and link the module trees, then print every module table (ordinary names,
tags and superseded declarations) followed by the program-scope symbols`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	var out *driver.Output
	_, err := runInstance(cmd, opts, func(inst *compiler.Instance) error {
		inputs, err := driver.Load(cmd.Context(), inst, args)
		if err != nil {
			return err
		}
		out = driver.Compile(inst, inputs)
		return nil
	})
	if out == nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, m := range out.Modules {
		fmt.Fprintln(w, m.Table.String())
	}
	if out.Global != nil {
		fmt.Fprintln(w, "---- PROGRAM ----")
		if werr := writeListing(w, globalRows(out.Global)); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// globalRows lists the program-scope symbols as name, kind, linkage.
func globalRows(g *link.Global) [][]string {
	rows := make([][]string, 0, g.Len())
	for _, s := range g.Symbols() {
		linkage := "external"
		if s.ProgramInternal {
			linkage = "internal"
		}
		rows = append(rows, []string{s.CurrentName(), s.Kind.String(), linkage})
	}
	return rows
}

// writeListing aligns the columns of rows by display width; identifiers
// may carry universal character names.
func writeListing(w io.Writer, rows [][]string) error {
	var widths []int
	for _, r := range rows {
		for i, cell := range r {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		for i, cell := range r {
			if i == len(r)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
