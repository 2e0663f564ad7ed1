package main

import (
	"github.com/nickng/amdahl/pfor"
	"github.com/spf13/cobra"
)

var asYAML bool

var resolveCmd = &cobra.Command{
	Use:   "resolve file.go [files.go...]",
	Short: "Resolve directive nests and report them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, func(a *pfor.Analyser) error {
			if asYAML {
				return a.WriteYAML()
			}
			a.WriteReport()
			return nil
		})
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&asYAML, "yaml", false, "Write the report as YAML")
}
