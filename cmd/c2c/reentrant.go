package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"c2c/internal/compiler"
	"c2c/internal/driver"
)

var reentrantCmd = &cobra.Command{
	Use:   "reentrant [flags] <tree>...",
	Short: "Extract file-scope state into a shared instance-data structure",
	Long: `Link module trees in reentrant mode: every file-scope and static object becomes
a member of DATA_STRUCTURE, written to the data header and its companion source`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReentrant,
}

func init() {
	reentrantCmd.Flags().Bool("quiet", false, "do not print the generated file names")
}

func runReentrant(cmd *cobra.Command, args []string) error {
	o := opts
	o.Reentrant = true
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var written []string
	_, err = runInstance(cmd, o, func(inst *compiler.Instance) error {
		inputs, err := driver.Load(cmd.Context(), inst, args)
		if err != nil {
			return err
		}
		out := driver.Compile(inst, inputs)
		written, err = driver.Emit(inst, out)
		return err
	})
	if err != nil {
		return err
	}
	if !quiet {
		for _, p := range written {
			fmt.Fprintln(cmd.OutOrStdout(), "wrote "+p)
		}
	}
	return nil
}
