package main

import (
	"github.com/nickng/amdahl/pfor"
	"github.com/spf13/cobra"
)

var migoCmd = &cobra.Command{
	Use:   "migo file.go [files.go...]",
	Short: "Write the fork/join model of resolved nests as MiGo",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, func(a *pfor.Analyser) error {
			a.WriteMiGo()
			return nil
		})
	},
}
