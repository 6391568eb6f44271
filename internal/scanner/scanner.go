// Package scanner runs the analysis client over every file of a project.
package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/logging"
)

// Analyzer analyzes a single file.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string, privacyFirst bool) (*domain.Result, error)
}

// ProgressEvent describes what happened during a scan step.
type ProgressEvent struct {
	Path     string
	Index    int
	Total    int
	Done     bool
	Duration time.Duration
	Err      error
	Findings int
}

// ProgressFunc is called before (Done=false) and after (Done=true) each file.
type ProgressFunc func(event ProgressEvent)

// Options control a project scan.
type Options struct {
	PrivacyFirst bool
	Collect      collector.Options
	OnProgress   ProgressFunc
}

// Runner analyzes files one at a time.
type Runner struct {
	analyzer Analyzer
	logger   *zap.SugaredLogger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(a Analyzer, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{analyzer: a, logger: logger}
}

// ScanProject collects the supported files under root and analyzes them in
// traversal order. Failures of individual files are recorded as skips and do
// not stop the scan. Cancellation stops the scan between files; the partial
// report is returned with Canceled set.
func (r *Runner) ScanProject(ctx context.Context, root string, opts Options) (*domain.ProjectReport, error) {
	coll, err := collector.Collect(ctx, root, opts.Collect)
	if err != nil {
		return nil, err
	}

	report := domain.NewProjectReport(root, opts.PrivacyFirst)
	report.Diagnostics = coll.Diagnostics
	for _, d := range coll.Diagnostics {
		r.logger.Warnw("skipping unreadable path", "path", d.Path, "error", d.Err)
	}
	report.FilesDiscovered = len(coll.Files)

	r.analyze(ctx, report, coll.Files, opts)
	report.Canceled = report.Canceled || coll.Canceled
	report.Finalize()
	return report, nil
}

// ScanFiles analyzes an explicit list of files, recording the report under
// root.
func (r *Runner) ScanFiles(ctx context.Context, root string, files []string, opts Options) *domain.ProjectReport {
	report := domain.NewProjectReport(root, opts.PrivacyFirst)
	report.FilesDiscovered = len(files)
	r.analyze(ctx, report, files, opts)
	report.Finalize()
	return report
}

func (r *Runner) analyze(ctx context.Context, report *domain.ProjectReport, files []string, opts Options) {
	// An in-flight request is allowed to finish after cancellation.
	callCtx := context.WithoutCancel(ctx)
	total := len(files)

	for i, path := range files {
		if ctx.Err() != nil {
			report.Canceled = true
			r.logger.Infow("scan canceled", "analyzed", i, "remaining", total-i)
			return
		}
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Path: path, Index: i, Total: total})
		}

		start := time.Now()
		res, err := r.analyzer.AnalyzeFile(callCtx, path, opts.PrivacyFirst)
		elapsed := time.Since(start)

		if err != nil {
			r.logger.Warnw("skipping file", "path", path, "error", err)
			report.AddSkip(path, err)
			if opts.OnProgress != nil {
				opts.OnProgress(ProgressEvent{Path: path, Index: i, Total: total, Done: true, Duration: elapsed, Err: err})
			}
			continue
		}
		if res.Path == "" {
			res.Path = path
		}
		report.AddResult(res)

		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Path: path, Index: i, Total: total, Done: true, Duration: elapsed, Findings: res.Count()})
		}
	}
}
