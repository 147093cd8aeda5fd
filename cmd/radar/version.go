package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"radar/internal/syntax"
	"radar/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			data, err := json.MarshalIndent(map[string]interface{}{
				"version":   version.Version,
				"commit":    version.Commit,
				"buildDate": version.BuildDate,
				"parser":    syntax.IsAvailable(),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		if !syntax.IsAvailable() {
			fmt.Fprintln(cmd.OutOrStdout(), "Parser: unavailable (built without CGO)")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(versionCmd)
}
