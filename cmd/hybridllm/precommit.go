package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/report"
	"github.com/sherwynjoel/hybridllm/internal/scanner"
	"github.com/sherwynjoel/hybridllm/internal/util"
	"github.com/sherwynjoel/hybridllm/internal/vcs"
)

// maxListed caps the findings printed when a commit is blocked.
const maxListed = 10

var precommitFailOn string

// commandRunner runs git; tests replace it with a mock.
var commandRunner util.CommandRunner = util.ExecRunner{}

var precommitCmd = &cobra.Command{
	Use:   "precommit [dir]",
	Short: "Scan staged files and block the commit on serious findings",
	Long: "Analyzes the files staged in the git repository containing dir and\n" +
		"exits non-zero when findings at or above --fail-on exist. Install it\n" +
		"as .git/hooks/pre-commit with: hybridllm precommit",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		if err := checkThreshold(precommitFailOn); err != nil {
			return err
		}
		if !util.DirExists(dir) {
			return fmt.Errorf("directory not found: %s", dir)
		}

		ctx, cancel := signalContext(cmd)
		defer cancel()

		root, files, err := vcs.StagedFiles(ctx, commandRunner, dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintln(out, "No files to scan")
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		privacyFirst, err := a.privacyMode(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Scanning %d staged files...\n", len(files))
		runner := scanner.NewRunner(a.client, a.logger)
		rep := runner.ScanFiles(ctx, root, files, scanner.Options{
			PrivacyFirst: privacyFirst,
			OnProgress:   newProgressWriter(cmd.ErrOrStderr(), root),
		})

		n, fail := report.FailThreshold(rep, precommitFailOn)
		if !fail {
			fmt.Fprintf(out, "%s %d files scanned, %d findings, commit allowed\n",
				successStyle.Render("✓"), rep.FilesAnalyzed, rep.TotalVulnerabilities)
			return nil
		}

		threshold := strings.ToUpper(precommitFailOn)
		fmt.Fprintf(out, "%s Commit blocked: %d findings at or above %s\n", errorStyle.Render("✗"), n, threshold)
		listed := 0
	files:
		for _, f := range rep.Files {
			for _, v := range f.Vulnerabilities {
				if !domain.AtLeast(v.Severity, threshold) {
					continue
				}
				if listed == maxListed {
					fmt.Fprintf(out, "  ... and %d more\n", n-listed)
					break files
				}
				fmt.Fprintf(out, "  %s:%d %s [%s] %s\n", displayPath(root, f.Path), v.Line, v.Type, v.Severity, v.Message)
				listed++
			}
		}
		return errors.New("commit blocked by security findings")
	},
}

func init() {
	precommitCmd.Flags().StringVar(&precommitFailOn, "fail-on", domain.SeverityCritical, "Block the commit on findings at or above this severity")
	rootCmd.AddCommand(precommitCmd)
}
