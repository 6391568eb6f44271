// Package stats counts source lines of the analyzed files.
package stats

import (
	"fmt"
	"sort"

	"github.com/hhatto/gocloc"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// Count returns code, comment and blank line totals for files, grouped by
// language. Files gocloc does not recognize are left out.
func Count(files []string) (*domain.LineStats, error) {
	out := &domain.LineStats{Languages: []domain.LanguageLines{}}
	if len(files) == 0 {
		return out, nil
	}

	clocOpts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	processor := gocloc.NewProcessor(languages, clocOpts)
	result, err := processor.Analyze(files)
	if err != nil {
		return nil, fmt.Errorf("counting lines: %w", err)
	}

	byLang := make(map[string]*domain.LanguageLines)
	for _, f := range result.Files {
		ll, ok := byLang[f.Lang]
		if !ok {
			ll = &domain.LanguageLines{Language: f.Lang}
			byLang[f.Lang] = ll
		}
		ll.Files++
		ll.Code += int(f.Code)
		ll.Comments += int(f.Comments)
		ll.Blanks += int(f.Blanks)
	}

	for _, ll := range byLang {
		out.Code += ll.Code
		out.Comments += ll.Comments
		out.Blanks += ll.Blanks
		out.Languages = append(out.Languages, *ll)
	}
	sort.Slice(out.Languages, func(i, j int) bool {
		if out.Languages[i].Code == out.Languages[j].Code {
			return out.Languages[i].Language < out.Languages[j].Language
		}
		return out.Languages[i].Code > out.Languages[j].Code
	})
	return out, nil
}

// ProjectFiles returns the paths of every file recorded in r, analyzed or
// skipped.
func ProjectFiles(r *domain.ProjectReport) []string {
	files := make([]string, 0, len(r.Files)+len(r.Skipped))
	for _, f := range r.Files {
		files = append(files, f.Path)
	}
	for _, s := range r.Skipped {
		files = append(files, s.Path)
	}
	return files
}
