package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// ToolName identifies this client in SARIF output.
const ToolName = "hybridllm"

// ToolVersion is stamped into SARIF output; the CLI overrides it at startup.
var ToolVersion = "dev"

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Message    sarifMessage    `json:"message"`
	Level      string          `json:"level"`
	Locations  []sarifLocation `json:"locations"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func marshalSARIF(r *domain.ProjectReport) ([]byte, error) {
	results := make([]sarifResult, 0, r.TotalVulnerabilities)
	for _, f := range r.Files {
		uri := toURI(r.Root, f.Path)
		for _, v := range f.Vulnerabilities {
			line := v.Line
			if line <= 0 {
				line = 1
			}
			msg := strings.TrimSpace(v.Message)
			if msg == "" {
				msg = v.Type
			}
			res := sarifResult{
				RuleID:  v.Type,
				Level:   severityToLevel(v.Severity),
				Message: sarifMessage{Text: msg},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: uri},
						Region:           sarifRegion{StartLine: line},
					},
				}},
			}
			if v.HasCWE() {
				res.Properties = map[string]any{"cwe": v.CWE}
			}
			results = append(results, res)
		}
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: ToolName, Version: ToolVersion}},
			Results: results,
		}},
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sarif: %w", err)
	}
	return append(data, '\n'), nil
}

func severityToLevel(s string) string {
	switch domain.Rank(s) {
	case domain.RankCritical, domain.RankHigh:
		return "error"
	case domain.RankMedium:
		return "warning"
	default:
		return "note"
	}
}

// toURI makes path relative to root when possible, slash-separated.
func toURI(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	p := filepath.ToSlash(strings.TrimSpace(path))
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return "UNKNOWN"
	}
	return p
}
