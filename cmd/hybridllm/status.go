package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the analysis service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd)
		defer cancel()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Service: %s\n", a.client.BaseURL())

		h, err := a.client.Health(ctx)
		if err != nil {
			return fmt.Errorf("service unreachable: %w", err)
		}
		fmt.Fprintf(out, "Health:  %s (%s %s)\n", h.Status, h.Framework, h.Version)

		s, err := a.client.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Local model (CodeLlama): %s\n", availability(s.CodeLlamaAvailable))
		fmt.Fprintf(out, "Cloud model (ChatGPT):   %s\n", availability(s.ChatGPTAvailable))
		fmt.Fprintf(out, "Service privacy-first:   %t\n", s.PrivacyFirstMode)
		return nil
	},
}

func availability(ok bool) string {
	if ok {
		return successStyle.Render("available")
	}
	return errorStyle.Render("unavailable")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
