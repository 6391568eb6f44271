package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	apiURL       string
	debug        bool
	privacyFirst bool
)

var rootCmd = &cobra.Command{
	Use:   "hybridllm",
	Short: "Vulnerability analysis client for the Hybrid LLM service",
	Long: "hybridllm sends source files to the Hybrid LLM analysis service, shows the\n" +
		"findings it returns, requests fixes, and controls privacy-first routing.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.config/hybridllm/config.toml)")
	pf.StringVar(&apiURL, "api-url", "", "Analysis service base URL")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&privacyFirst, "privacy-first", true, "Override the saved routing mode for this run")
}
