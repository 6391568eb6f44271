package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

//go:embed templates/report.md.tmpl
var markdownTemplate string

var markdownTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"cell": markdownCell,
	"rel":  func(p string) string { return p },
	"cwe": func(s string) string {
		if s == "" {
			return "N/A"
		}
		return markdownCell(s)
	},
}).Parse(markdownTemplate))

func renderMarkdown(r *domain.ProjectReport) ([]byte, error) {
	tmpl, err := markdownTmpl.Clone()
	if err != nil {
		return nil, err
	}
	tmpl.Funcs(template.FuncMap{
		"rel": func(p string) string { return toURI(r.Root, p) },
	})

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render markdown report: %w", err)
	}
	return buf.Bytes(), nil
}

// markdownCell keeps a value on one table row.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
