package domain

// Vulnerability is a single finding reported by the analysis service.
type Vulnerability struct {
	Type     string `json:"type" toml:"type" yaml:"type"`
	Severity string `json:"severity" toml:"severity" yaml:"severity"`
	Line     int    `json:"line" toml:"line" yaml:"line"`
	Message  string `json:"message" toml:"message" yaml:"message"`
	CWE      string `json:"cwe,omitempty" toml:"cwe,omitempty" yaml:"cwe,omitempty"`
}

// HasCWE reports whether the finding carries a CWE identifier.
func (v Vulnerability) HasCWE() bool {
	return v.CWE != ""
}

// Result holds the findings for one analyzed file, in service order.
type Result struct {
	Path            string          `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`
	Language        Language        `json:"language,omitempty" toml:"language,omitempty" yaml:"language,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities" toml:"vulnerabilities" yaml:"vulnerabilities"`
}

// NewResult creates a Result. A nil slice is normalized to empty.
func NewResult(path string, lang Language, vulns []Vulnerability) *Result {
	if vulns == nil {
		vulns = []Vulnerability{}
	}
	return &Result{Path: path, Language: lang, Vulnerabilities: vulns}
}

// Count returns the number of findings.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Vulnerabilities)
}

// HasVulnerabilities reports whether at least one finding was returned.
func (r *Result) HasVulnerabilities() bool {
	return r.Count() > 0
}

// Find returns the first finding on the given line, optionally filtered by type.
func (r *Result) Find(line int, vulnType string) (Vulnerability, bool) {
	if r == nil {
		return Vulnerability{}, false
	}
	for _, v := range r.Vulnerabilities {
		if v.Line != line {
			continue
		}
		if vulnType != "" && v.Type != vulnType {
			continue
		}
		return v, true
	}
	return Vulnerability{}, false
}
