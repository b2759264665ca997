package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"c2c/internal/ast"
	"c2c/internal/version"
)

type versionPayload struct {
	Tool             string `json:"tool"`
	Version          string `json:"version"`
	GitCommit        string `json:"git_commit,omitempty"`
	BuildDate        string `json:"build_date,omitempty"`
	TreeFormat       string `json:"tree_format"`
	SupportedFormats string `json:"supported_formats"`
	Config           string `json:"config,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show c2c build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		out := cmd.OutOrStdout()
		switch strings.ToLower(format) {
		case "pretty":
			fmt.Fprintln(out, version.Banner(useColor(cmd, os.Stdout)))
			if configPath != "" {
				fmt.Fprintln(out, "config "+configPath)
			}
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(versionPayload{
				Tool:             "c2c",
				Version:          version.Version,
				GitCommit:        version.GitCommit,
				BuildDate:        version.BuildDate,
				TreeFormat:       ast.FormatVersion,
				SupportedFormats: ast.SupportedFormats,
				Config:           configPath,
			})
		default:
			return fmt.Errorf("unknown format %q (want pretty or json)", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
