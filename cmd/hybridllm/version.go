package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/report"
)

var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print hybridllm version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hybridllm %s\n", Version)
	},
}

func init() {
	report.ToolVersion = Version
	rootCmd.AddCommand(versionCmd)
}
