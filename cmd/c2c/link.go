package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"c2c/internal/compiler"
	"c2c/internal/driver"
)

var linkCmd = &cobra.Command{
	Use:   "link [flags] <tree>...",
	Short: "Link module trees into one program",
	Long: `Build the symbol table of every module tree and link them in standard mode:
externs resolve to their single definition, conflicts and unresolved names are reported`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLink,
}

func init() {
	linkCmd.Flags().Bool("symbols", false, "print the program-scope symbols after a successful link")
}

func runLink(cmd *cobra.Command, args []string) error {
	o := opts
	o.Reentrant = false
	listSymbols, err := cmd.Flags().GetBool("symbols")
	if err != nil {
		return fmt.Errorf("failed to get symbols flag: %w", err)
	}

	var out *driver.Output
	_, err = runInstance(cmd, o, func(inst *compiler.Instance) error {
		inputs, err := driver.Load(cmd.Context(), inst, args)
		if err != nil {
			return err
		}
		out = driver.Compile(inst, inputs)
		return nil
	})
	if err != nil {
		return err
	}
	if listSymbols && out != nil && out.Global != nil {
		return writeListing(cmd.OutOrStdout(), globalRows(out.Global))
	}
	return nil
}
