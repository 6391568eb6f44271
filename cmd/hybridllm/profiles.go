package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List exclusion profiles for project scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := profiles.All()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Always excluded: %s\n\n", strings.Join(collector.DefaultExcludeDirs, ", "))
		for _, p := range all {
			fmt.Fprintf(out, "%s: %s\n", p.Name, p.Description)
			if len(p.ExcludeDirs) > 0 {
				fmt.Fprintf(out, "  exclude: %s\n", strings.Join(p.ExcludeDirs, ", "))
			}
			if len(p.IgnorePatterns) > 0 {
				fmt.Fprintf(out, "  ignore:  %s\n", strings.Join(p.IgnorePatterns, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
