package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/client"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/present"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := checkSourceFile(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		privacyFirst, err := a.privacyMode(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd)
		defer cancel()

		res, err := a.client.AnalyzeFile(ctx, path, privacyFirst)
		if err != nil {
			return analysisError(a, err)
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintln(out, present.Summary(res))
		if res.HasVulnerabilities() {
			fmt.Fprintln(out, present.Table(present.Rows(res)))
		}
		return nil
	},
}

// analysisError wraps a failed call, pointing at the service URL when it
// could not be reached.
func analysisError(a *app, err error) error {
	if client.IsKind(err, client.KindTransport) {
		return fmt.Errorf("analysis failed: %w (is the service running at %s?)", err, a.client.BaseURL())
	}
	return fmt.Errorf("analysis failed: %w", err)
}

// checkSourceFile resolves path and rejects missing or unsupported files.
func checkSourceFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if _, ok := domain.LookupLanguage(abs); !ok {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(abs))
	}
	return abs, nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
