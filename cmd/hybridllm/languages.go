package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and file suffixes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, l := range domain.Languages() {
			fmt.Fprintf(out, "%-12s %s\n", l, strings.Join(domain.Suffixes(l), " "))
		}
		fmt.Fprintf(out, "\nOther suffixes are sent as %s.\n", domain.DefaultLanguage)
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
