package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/config"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/report"
	"github.com/sherwynjoel/hybridllm/internal/util"
)

var (
	reportPassphrase string
	reportFormat     string
	reportSeal       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect or convert saved scan reports",
}

var reportShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the summary of a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := loadReport(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Report %s\n", rep.ID)
		fmt.Fprintf(out, "Root: %s\n", rep.Root)
		fmt.Fprintf(out, "Started: %s (%.1fs)\n", rep.StartedAt.Format("2006-01-02 15:04:05"), rep.DurationSecs)
		printReport(out, rep)
		return nil
	},
}

var reportConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a saved report in another format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := loadReport(args[0])
		if err != nil {
			return err
		}
		format, err := outputFormat(args[1], reportFormat, "")
		if err != nil {
			return err
		}
		data, err := report.Marshal(rep, format)
		if err != nil {
			return err
		}
		passphrase := ""
		if reportSeal {
			if passphrase, err = resolvePassphrase(); err != nil {
				return err
			}
			if passphrase == "" {
				return fmt.Errorf("--seal needs a passphrase")
			}
		}
		if err := report.WriteFile(args[1], data, passphrase); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report to %s\n", format, args[1])
		return nil
	},
}

// loadReport reads a json, toml or yaml report, opening it when sealed.
func loadReport(path string) (*domain.ProjectReport, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("report not found: %s", path)
	}
	format, err := report.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	passphrase, err := resolvePassphrase()
	if err != nil {
		return nil, err
	}
	data, err := report.ReadFile(path, passphrase)
	if err != nil {
		return nil, err
	}
	return report.Unmarshal(data, format)
}

// resolvePassphrase prefers --passphrase over the configured one.
func resolvePassphrase() (string, error) {
	if reportPassphrase != "" {
		return reportPassphrase, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.Passphrase, nil
}

func init() {
	reportCmd.PersistentFlags().StringVar(&reportPassphrase, "passphrase", "", "Passphrase for sealed reports")
	reportConvertCmd.Flags().StringVar(&reportFormat, "format", "", "Output format (default: from the output file name)")
	reportConvertCmd.Flags().BoolVar(&reportSeal, "seal", false, "Encrypt the output with the passphrase")
	reportCmd.AddCommand(reportShowCmd, reportConvertCmd)
	rootCmd.AddCommand(reportCmd)
}
