package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sherwynjoel/hybridllm/internal/artifact"
	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/present"
	"github.com/sherwynjoel/hybridllm/internal/report"
	"github.com/sherwynjoel/hybridllm/internal/scanner"
	"github.com/sherwynjoel/hybridllm/internal/stats"
)

var (
	projectOutput  string
	projectFormat  string
	projectFailOn  string
	projectLOC     bool
	projectUpload  bool
	projectSeal    bool
	projectQuiet   bool
	projectProfile string
	projectExclude []string
	projectIgnore  []string
)

var projectCmd = &cobra.Command{
	Use:   "project [dir]",
	Short: "Analyze every supported file under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		root, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dir, err)
		}
		if err := collector.CheckRoot(root); err != nil {
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
		collectOpts, err := a.collectOptions(projectProfile, projectExclude, projectIgnore)
		if err != nil {
			return err
		}
		format, err := outputFormat(projectOutput, projectFormat, a.cfg.ReportFormat)
		if err != nil {
			return err
		}
		failOn := firstNonEmptyFlag(cmd, "fail-on", projectFailOn, a.cfg.FailOn)
		if err := checkThreshold(failOn); err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd)
		defer cancel()

		out := cmd.OutOrStdout()
		opts := scanner.Options{PrivacyFirst: privacyFirst, Collect: collectOpts}
		if !projectQuiet {
			opts.OnProgress = newProgressWriter(cmd.ErrOrStderr(), root)
		}

		runner := scanner.NewRunner(a.client, a.logger)
		rep, err := runner.ScanProject(ctx, root, opts)
		if err != nil {
			return err
		}

		if projectLOC {
			lines, err := stats.Count(stats.ProjectFiles(rep))
			if err != nil {
				a.logger.Warnw("line count failed", "error", err)
			} else {
				rep.Lines = lines
			}
		}

		printReport(out, rep)

		if projectOutput != "" || projectUpload {
			data, err := report.Marshal(rep, format)
			if err != nil {
				return err
			}
			passphrase := ""
			if projectSeal {
				if a.cfg.Passphrase == "" {
					return fmt.Errorf("--seal needs a passphrase; set HYBRIDLLM_REPORT_PASSPHRASE")
				}
				passphrase = a.cfg.Passphrase
			}
			if projectOutput != "" {
				if err := report.WriteFile(projectOutput, data, passphrase); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nReport saved to: %s\n", projectOutput)
			}
			if projectUpload {
				if err := uploadReport(ctx, a.cfg.Artifact.S3(), rep.ID, reportName(format, passphrase != ""), data, passphrase); err != nil {
					return err
				}
				fmt.Fprintf(out, "Report uploaded as run %s\n", rep.ID)
			}
		}

		if rep.Canceled {
			return fmt.Errorf("scan interrupted after %d of %d files", rep.FilesAnalyzed+rep.FilesSkipped, rep.FilesDiscovered)
		}
		if n, fail := report.FailThreshold(rep, failOn); fail {
			return fmt.Errorf("%d findings at or above %s", n, strings.ToUpper(failOn))
		}
		return nil
	},
}

// printReport writes the scan totals, the severity breakdown and one table
// per file with findings.
func printReport(w io.Writer, rep *domain.ProjectReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files analyzed: %d\n", rep.FilesAnalyzed)
	fmt.Fprintf(w, "Vulnerabilities found: %d\n", rep.TotalVulnerabilities)
	fmt.Fprintf(w, "Files skipped: %d\n", rep.FilesSkipped)
	if rep.FilesWithVulnerabilities > 0 {
		fmt.Fprintf(w, "Files with vulnerabilities: %d\n", rep.FilesWithVulnerabilities)
	}
	if rep.TotalVulnerabilities > 0 {
		s := rep.Summary
		fmt.Fprintln(w, "\nSeverity breakdown:")
		for _, b := range []struct {
			label string
			n     int
		}{
			{domain.SeverityCritical, s.Critical},
			{domain.SeverityHigh, s.High},
			{domain.SeverityMedium, s.Medium},
			{domain.SeverityLow, s.Low},
			{"OTHER", s.Other},
		} {
			if b.n > 0 {
				fmt.Fprintf(w, "  %-8s %d\n", b.label, b.n)
			}
		}
	}
	if rep.Lines != nil {
		fmt.Fprintf(w, "\nLines: %d code, %d comments, %d blank\n", rep.Lines.Code, rep.Lines.Comments, rep.Lines.Blanks)
	}

	for _, f := range rep.Files {
		if len(f.Vulnerabilities) == 0 {
			continue
		}
		res := domain.NewResult(f.Path, f.Language, f.Vulnerabilities)
		fmt.Fprintf(w, "\n%s\n", displayPath(rep.Root, f.Path))
		fmt.Fprintln(w, present.Table(present.Rows(res)))
	}
	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", displayPath(rep.Root, s.Path), s.Err)
	}
}

// outputFormat picks the report format: --format, then the output file
// extension, then the configured default.
func outputFormat(output, flagFormat, configured string) (report.Format, error) {
	if flagFormat != "" {
		return report.ParseFormat(flagFormat)
	}
	if output != "" {
		if f, err := report.FormatFromPath(output); err == nil {
			return f, nil
		}
	}
	if configured == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(configured)
}

func reportName(f report.Format, sealed bool) string {
	ext := string(f)
	if f == report.FormatMarkdown {
		ext = "md"
	}
	name := "report." + ext
	if sealed {
		name += ".age"
	}
	return name
}

func uploadReport(ctx context.Context, cfg artifact.S3Config, runID, name string, data []byte, passphrase string) error {
	if !cfg.Enabled() {
		return fmt.Errorf("--upload needs an artifact endpoint and bucket in the config")
	}
	if passphrase != "" {
		sealed, err := report.Seal(data, passphrase)
		if err != nil {
			return err
		}
		data = sealed
	}
	store, err := artifact.NewS3Store(cfg)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, runID, name, data); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}
	return nil
}

// checkThreshold rejects severities that could never match a finding.
func checkThreshold(severity string) error {
	if severity != "" && domain.Rank(severity) == domain.RankOther {
		return fmt.Errorf("invalid --fail-on %q: use critical, high, medium or low", severity)
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// firstNonEmptyFlag returns the flag value when it was set explicitly and
// the configured value otherwise.
func firstNonEmptyFlag(cmd *cobra.Command, name, flagValue, configured string) string {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return flagValue
	}
	if configured != "" {
		return configured
	}
	return flagValue
}

func init() {
	f := projectCmd.Flags()
	f.StringVarP(&projectOutput, "output", "o", "", "Write the report to a file")
	f.StringVar(&projectFormat, "format", "", "Report format: "+formatList())
	f.StringVar(&projectFailOn, "fail-on", "", "Exit non-zero when findings at or above this severity exist")
	f.BoolVar(&projectLOC, "loc", false, "Include line statistics in the report")
	f.BoolVar(&projectUpload, "upload", false, "Upload the report to the configured bucket")
	f.BoolVar(&projectSeal, "seal", false, "Encrypt the report with the configured passphrase")
	f.BoolVarP(&projectQuiet, "quiet", "q", false, "Do not print per-file progress")
	f.StringVar(&projectProfile, "profile", "", "Exclusion profile (see 'hybridllm profiles')")
	f.StringSliceVar(&projectExclude, "exclude", nil, "Additional directory names to skip")
	f.StringSliceVar(&projectIgnore, "ignore", nil, "Glob patterns of files to skip")
	rootCmd.AddCommand(projectCmd)
}
