package domain

import (
	"time"

	"github.com/google/uuid"
)

// Diagnostic records a path the collector could not read.
type Diagnostic struct {
	Path string `json:"path" toml:"path" yaml:"path"`
	Err  string `json:"error" toml:"error" yaml:"error"`
}

// FileReport is the per-file entry of a project report.
type FileReport struct {
	Path            string          `json:"path" toml:"path" yaml:"path"`
	Language        Language        `json:"language" toml:"language" yaml:"language"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities" toml:"vulnerabilities" yaml:"vulnerabilities"`
}

// SkippedFile is a file whose analysis failed during a project scan.
type SkippedFile struct {
	Path string `json:"path" toml:"path" yaml:"path"`
	Err  string `json:"error" toml:"error" yaml:"error"`
}

// LanguageLines holds line counts for one language.
type LanguageLines struct {
	Language string `json:"language" toml:"language" yaml:"language"`
	Files    int    `json:"files" toml:"files" yaml:"files"`
	Code     int    `json:"code" toml:"code" yaml:"code"`
	Comments int    `json:"comments" toml:"comments" yaml:"comments"`
	Blanks   int    `json:"blanks" toml:"blanks" yaml:"blanks"`
}

// LineStats aggregates line counts over the analyzed files.
type LineStats struct {
	Code      int             `json:"code" toml:"code" yaml:"code"`
	Comments  int             `json:"comments" toml:"comments" yaml:"comments"`
	Blanks    int             `json:"blanks" toml:"blanks" yaml:"blanks"`
	Languages []LanguageLines `json:"languages" toml:"languages" yaml:"languages"`
}

// ProjectReport is the outcome of a project-wide scan.
type ProjectReport struct {
	ID                       string          `json:"id" toml:"id" yaml:"id"`
	Root                     string          `json:"root" toml:"root" yaml:"root"`
	StartedAt                time.Time       `json:"started_at" toml:"started_at" yaml:"started_at"`
	DurationSecs             float64         `json:"duration_secs" toml:"duration_secs" yaml:"duration_secs"`
	PrivacyFirstMode         bool            `json:"privacy_first_mode" toml:"privacy_first_mode" yaml:"privacy_first_mode"`
	Canceled                 bool            `json:"canceled,omitempty" toml:"canceled,omitempty" yaml:"canceled,omitempty"`
	FilesDiscovered          int             `json:"files_discovered" toml:"files_discovered" yaml:"files_discovered"`
	FilesAnalyzed            int             `json:"files_analyzed" toml:"files_analyzed" yaml:"files_analyzed"`
	FilesSkipped             int             `json:"files_skipped" toml:"files_skipped" yaml:"files_skipped"`
	FilesWithVulnerabilities int             `json:"files_with_vulnerabilities" toml:"files_with_vulnerabilities" yaml:"files_with_vulnerabilities"`
	TotalVulnerabilities     int             `json:"total_vulnerabilities" toml:"total_vulnerabilities" yaml:"total_vulnerabilities"`
	Summary                  SeveritySummary `json:"summary" toml:"summary" yaml:"summary"`
	Files                    []FileReport    `json:"files" toml:"files" yaml:"files"`
	Skipped                  []SkippedFile   `json:"skipped,omitempty" toml:"skipped,omitempty" yaml:"skipped,omitempty"`
	Diagnostics              []Diagnostic    `json:"diagnostics,omitempty" toml:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Lines                    *LineStats      `json:"lines,omitempty" toml:"lines,omitempty" yaml:"lines,omitempty"`
}

// NewProjectReport creates an empty report with a fresh ID.
func NewProjectReport(root string, privacyFirst bool) *ProjectReport {
	return &ProjectReport{
		ID:               uuid.NewString(),
		Root:             root,
		StartedAt:        time.Now(),
		PrivacyFirstMode: privacyFirst,
		Files:            []FileReport{},
	}
}

// AddResult records a successful analysis.
func (r *ProjectReport) AddResult(res *Result) {
	r.Files = append(r.Files, FileReport{
		Path:            res.Path,
		Language:        res.Language,
		Vulnerabilities: res.Vulnerabilities,
	})
}

// AddSkip records a failed analysis.
func (r *ProjectReport) AddSkip(path string, err error) {
	r.Skipped = append(r.Skipped, SkippedFile{Path: path, Err: err.Error()})
}

// Finalize derives every count from Files and Skipped. It must be called
// after the last AddResult/AddSkip.
func (r *ProjectReport) Finalize() {
	r.FilesAnalyzed = len(r.Files)
	r.FilesSkipped = len(r.Skipped)
	r.FilesWithVulnerabilities = 0
	r.Summary = SeveritySummary{}
	for _, f := range r.Files {
		if len(f.Vulnerabilities) > 0 {
			r.FilesWithVulnerabilities++
		}
		for _, v := range f.Vulnerabilities {
			r.Summary.Add(v.Severity)
		}
	}
	r.TotalVulnerabilities = r.Summary.Total()
	r.DurationSecs = time.Since(r.StartedAt).Seconds()
}

// CountAtLeast returns the number of findings at or above threshold.
func (r *ProjectReport) CountAtLeast(threshold string) int {
	n := 0
	for _, f := range r.Files {
		for _, v := range f.Vulnerabilities {
			if AtLeast(v.Severity, threshold) {
				n++
			}
		}
	}
	return n
}
