package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/tui"
	"github.com/sherwynjoel/hybridllm/internal/util"
)

var (
	fixLine        int
	fixType        string
	fixInteractive bool
	fixWrite       bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Request a fix for findings in a file",
	Long: "Analyzes the file, then asks the service to fix the chosen findings.\n" +
		"Pick a finding with --line (and --type), or choose several with -i.\n" +
		"The fixed code is printed unless --write is given.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := checkSourceFile(args[0])
		if err != nil {
			return err
		}
		before, err := util.ContentHash(path)
		if err != nil {
			return err
		}
		code, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
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
		if !res.HasVulnerabilities() {
			fmt.Fprintln(out, "No vulnerabilities found!")
			return nil
		}

		chosen, err := chooseFindings(cmd, res)
		if err != nil {
			return err
		}
		if len(chosen) == 0 {
			fmt.Fprintln(out, "Nothing selected.")
			return nil
		}

		fixed := string(code)
		for _, v := range chosen {
			a.logger.Debugw("requesting fix", "type", v.Type, "line", v.Line)
			fixed, err = a.client.Fix(ctx, fixed, v, res.Language)
			if err != nil {
				return fmt.Errorf("fix %s on line %d: %w", v.Type, v.Line, err)
			}
		}

		if !fixWrite {
			fmt.Fprint(out, fixed)
			return nil
		}
		after, err := util.ContentHash(path)
		if err != nil {
			return err
		}
		if after != before {
			return fmt.Errorf("%s changed during the fix; not overwriting", path)
		}
		if err := util.WriteFileAtomic(path, []byte(fixed)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Applied %d fixes to %s\n", len(chosen), path)
		return nil
	},
}

func chooseFindings(cmd *cobra.Command, res *domain.Result) ([]domain.Vulnerability, error) {
	switch {
	case cmd.Flags().Changed("line"):
		v, ok := res.Find(fixLine, fixType)
		if !ok {
			return nil, fmt.Errorf("no finding on line %d", fixLine)
		}
		return []domain.Vulnerability{v}, nil
	case fixInteractive:
		return tui.RunFindingSelect(fmt.Sprintf("Select findings to fix in %s", res.Path), res.Vulnerabilities)
	case res.Count() == 1:
		return res.Vulnerabilities, nil
	default:
		return nil, fmt.Errorf("%d findings; choose one with --line or use -i", res.Count())
	}
}

func init() {
	f := fixCmd.Flags()
	f.IntVar(&fixLine, "line", 0, "Line of the finding to fix")
	f.StringVar(&fixType, "type", "", "Finding type, when several share a line")
	f.BoolVarP(&fixInteractive, "interactive", "i", false, "Pick findings interactively")
	f.BoolVarP(&fixWrite, "write", "w", false, "Overwrite the file with the fixed code")
	rootCmd.AddCommand(fixCmd)
}
