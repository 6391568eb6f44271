// Package report encodes project scan reports for storage and CI.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
	FormatYAML     Format = "yaml"
	FormatSARIF    Format = "sarif"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported encoding.
func Formats() []Format {
	return []Format{FormatJSON, FormatTOML, FormatYAML, FormatSARIF, FormatMarkdown}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "sarif":
		return FormatSARIF, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// FormatFromPath guesses a format from the file name, ignoring a trailing
// .age suffix.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(strings.TrimSuffix(path, ".age"))
	if ext == "" {
		return "", fmt.Errorf("cannot infer report format from %q", path)
	}
	return ParseFormat(strings.TrimPrefix(ext, "."))
}

// Marshal encodes r in format f.
func Marshal(r *domain.ProjectReport, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json report: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(r); err != nil {
			return nil, fmt.Errorf("marshal toml report: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml report: %w", err)
		}
		return data, nil
	case FormatSARIF:
		return marshalSARIF(r)
	case FormatMarkdown:
		return renderMarkdown(r)
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}

// Unmarshal decodes a report previously written as JSON, TOML or YAML.
func Unmarshal(data []byte, f Format) (*domain.ProjectReport, error) {
	var r domain.ProjectReport
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &r)
	case FormatTOML:
		_, err = toml.Decode(string(data), &r)
	case FormatYAML:
		err = yaml.Unmarshal(data, &r)
	default:
		return nil, fmt.Errorf("report format %q cannot be read back", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s report: %w", f, err)
	}
	return &r, nil
}

// FailThreshold returns how many findings are at or above severity and
// whether that number should fail a CI run. An empty severity never fails.
func FailThreshold(r *domain.ProjectReport, severity string) (int, bool) {
	if strings.TrimSpace(severity) == "" {
		return 0, false
	}
	n := r.CountAtLeast(severity)
	return n, n > 0
}
