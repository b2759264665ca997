package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"c2c/internal/options"
	"c2c/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "c2c",
	Short: "C and OpenCL-C source-to-source transpiler",
	Long: `c2c links the declaration trees of C and OpenCL-C modules into one program
and, in reentrant mode, extracts file-scope state into a shared data structure`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadOptions,
}

// opts is the option set of the invocation: defaults, then c2c.toml, then flags.
var opts = options.Default()

// configPath is the c2c.toml that was loaded, if any.
var configPath string

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(reentrantCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	opts.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to c2c.toml (default: search upward)")

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// loadOptions overlays c2c.toml under the flags given on the command line.
// Flags are bound before the file is read, so the file values are applied
// only to flags the user did not set.
func loadOptions(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg, err := flags.GetString("config")
	if err != nil {
		return err
	}
	base := options.Default()
	if cfg != "" {
		if err := base.LoadFile(cfg); err != nil {
			return err
		}
		configPath = cfg
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if base, configPath, err = options.Load(wd); err != nil {
			return err
		}
	}
	opts = mergeFlags(base, opts, flags.Changed)
	return opts.Validate()
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
