package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherwynjoel/hybridllm/internal/client"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/privacy"
)

// mockBackend implements Backend for testing.
type mockBackend struct {
	mu        sync.Mutex
	vulns     []domain.Vulnerability
	err       error
	fixed     string
	privacy   []bool
	lastLang  domain.Language
	lastVuln  domain.Vulnerability
	fileCalls int
	healthErr error
}

func (m *mockBackend) AnalyzeFile(_ context.Context, path string, privacyFirst bool) (*domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileCalls++
	m.privacy = append(m.privacy, privacyFirst)
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewResult(path, domain.DetectLanguage(path), m.vulns), nil
}

func (m *mockBackend) AnalyzeCode(_ context.Context, _ string, lang domain.Language, privacyFirst bool) (*domain.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLang = lang
	m.privacy = append(m.privacy, privacyFirst)
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewResult("", lang, m.vulns), nil
}

func (m *mockBackend) Fix(_ context.Context, _ string, vuln domain.Vulnerability, lang domain.Language) (string, error) {
	m.lastVuln = vuln
	m.lastLang = lang
	if m.err != nil {
		return "", m.err
	}
	return m.fixed, nil
}

func (m *mockBackend) Health(context.Context) (*client.Health, error) {
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &client.Health{Status: "healthy", Version: "1.0.0"}, nil
}

func (m *mockBackend) Status(context.Context) (*client.ServiceStatus, error) {
	return &client.ServiceStatus{CodeLlamaAvailable: true, PrivacyFirstMode: true}, nil
}

// callTool builds a CallToolRequest and invokes the registered handler.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *gomcp.CallToolResult {
	t.Helper()
	req := gomcp.CallToolRequest{
		Params: gomcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	handler, ok := s.handlers[name]
	require.True(t, ok, "tool %q not registered", name)
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// getTextContent extracts the text from the first TextContent in a CallToolResult.
func getTextContent(t *testing.T, result *gomcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content item")
	tc, ok := gomcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func sourceFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestAnalyzeFile(t *testing.T) {
	backend := &mockBackend{vulns: []domain.Vulnerability{
		{Type: "code_injection", Severity: "high", Line: 1, Message: "Unsafe eval", CWE: "CWE-95"},
	}}
	srv := NewServer(backend, privacy.NewMode(true), Options{})

	result := callTool(t, srv, "analyze_file", map[string]interface{}{"path": sourceFile(t, "app.py", "eval(input())")})
	assert.False(t, result.IsError)

	var payload analysisPayload
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &payload))
	assert.Equal(t, 1, payload.Total)
	assert.True(t, payload.PrivacyFirstMode)
	assert.Equal(t, domain.Python, payload.Language)
	assert.Equal(t, [][]string{{"1", "code_injection", "high", "CWE-95", "Unsafe eval"}}, payload.Rows)
	assert.Equal(t, []bool{true}, backend.privacy)
}

func TestAnalyzeFile_InputErrors(t *testing.T) {
	backend := &mockBackend{}
	srv := NewServer(backend, nil, Options{})

	tests := map[string]map[string]interface{}{
		"missing argument": {},
		"missing file":     {"path": filepath.Join(t.TempDir(), "nope.py")},
		"directory":        {"path": t.TempDir()},
		"unsupported":      {"path": sourceFile(t, "notes.md", "# hi")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			result := callTool(t, srv, "analyze_file", args)
			assert.True(t, result.IsError)
		})
	}
	assert.Zero(t, backend.fileCalls, "no request for invalid input")
}

func TestAnalyzeFile_ServiceError(t *testing.T) {
	backend := &mockBackend{err: &client.Error{Op: "analyze", Kind: client.KindStatus, StatusCode: 500}}
	srv := NewServer(backend, nil, Options{})

	result := callTool(t, srv, "analyze_file", map[string]interface{}{"path": sourceFile(t, "a.js", "x")})
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(t, result), "Analysis failed")
	assert.Contains(t, getTextContent(t, result), "500")
}

func TestAnalyzeCode(t *testing.T) {
	backend := &mockBackend{}
	srv := NewServer(backend, privacy.NewMode(false), Options{})

	result := callTool(t, srv, "analyze_code", map[string]interface{}{"code": "int main(){}", "language": "C"})
	assert.False(t, result.IsError)
	assert.Equal(t, domain.C, backend.lastLang)
	assert.Equal(t, []bool{false}, backend.privacy)

	result = callTool(t, srv, "analyze_code", map[string]interface{}{"code": "x = 1"})
	assert.False(t, result.IsError)
	assert.Equal(t, domain.DefaultLanguage, backend.lastLang)

	result = callTool(t, srv, "analyze_code", map[string]interface{}{"code": "x", "language": "cobol"})
	assert.True(t, result.IsError)
}

func TestTogglePrivacy_AffectsNextAnalysis(t *testing.T) {
	backend := &mockBackend{}
	srv := NewServer(backend, privacy.NewMode(true), Options{})

	result := callTool(t, srv, "toggle_privacy_mode", nil)
	var p privacyPayload
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &p))
	assert.False(t, p.PrivacyFirstMode)
	assert.Equal(t, "Efficiency", p.Label)

	callTool(t, srv, "analyze_code", map[string]interface{}{"code": "x"})
	callTool(t, srv, "toggle_privacy_mode", nil)
	callTool(t, srv, "analyze_code", map[string]interface{}{"code": "x"})
	assert.Equal(t, []bool{false, true}, backend.privacy)

	result = callTool(t, srv, "privacy_status", nil)
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &p))
	assert.True(t, p.PrivacyFirstMode)
	assert.Equal(t, "Privacy-First", p.Label)
	assert.Contains(t, p.Routing, "Local LLM")
}

func TestAnalyzeProject(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"a.py", "node_modules/b.js", "src/c.ts", "README.md"} {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	backend := &mockBackend{vulns: []domain.Vulnerability{{Type: "t", Severity: "low", Line: 1}}}
	srv := NewServer(backend, privacy.NewMode(true), Options{})

	result := callTool(t, srv, "analyze_project", map[string]interface{}{"path": root})
	assert.False(t, result.IsError)

	var report domain.ProjectReport
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &report))
	assert.Equal(t, 2, report.FilesAnalyzed)
	assert.Equal(t, 2, report.TotalVulnerabilities)
	assert.True(t, report.PrivacyFirstMode)
}

func TestAnalyzeProject_CountsFailures(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x"), 0o644))

	srv := NewServer(&mockBackend{err: errors.New("connection refused")}, nil, Options{})
	result := callTool(t, srv, "analyze_project", map[string]interface{}{"path": root})
	assert.False(t, result.IsError)

	var report domain.ProjectReport
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &report))
	assert.Equal(t, 0, report.FilesAnalyzed)
	assert.Equal(t, 1, report.FilesSkipped)
}

func TestAnalyzeProject_BadRoot(t *testing.T) {
	srv := NewServer(&mockBackend{}, nil, Options{})
	result := callTool(t, srv, "analyze_project", map[string]interface{}{"path": filepath.Join(t.TempDir(), "missing")})
	assert.True(t, result.IsError)
}

func TestFixVulnerability(t *testing.T) {
	backend := &mockBackend{fixed: "print(int(input()))"}
	srv := NewServer(backend, nil, Options{})

	result := callTool(t, srv, "fix_vulnerability", map[string]interface{}{
		"code":     "eval(input())",
		"language": "python",
		"type":     "code_injection",
		"severity": "high",
		"line":     float64(1),
		"cwe":      "CWE-95",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "print(int(input()))", getTextContent(t, result))
	assert.Equal(t, domain.Vulnerability{Type: "code_injection", Severity: "high", Line: 1, CWE: "CWE-95"}, backend.lastVuln)
}

func TestFixVulnerability_Errors(t *testing.T) {
	srv := NewServer(&mockBackend{}, nil, Options{})
	result := callTool(t, srv, "fix_vulnerability", map[string]interface{}{"code": "x", "type": "t", "severity": "s"})
	assert.True(t, result.IsError, "line is required")

	srv = NewServer(&mockBackend{err: errors.New("response is missing \"fixed_code\"")}, nil, Options{})
	result = callTool(t, srv, "fix_vulnerability", map[string]interface{}{"code": "x", "type": "t", "severity": "s", "line": float64(3)})
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(t, result), "Fix failed")
}

func TestListLanguages(t *testing.T) {
	srv := NewServer(&mockBackend{}, nil, Options{})
	result := callTool(t, srv, "list_languages", nil)

	var infos []struct {
		Language string   `json:"language"`
		Suffixes []string `json:"suffixes"`
		Default  bool     `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &infos))
	require.Len(t, infos, len(domain.Languages()))
	assert.Equal(t, "python", infos[0].Language)
	assert.True(t, infos[0].Default)
}

func TestServiceStatus(t *testing.T) {
	srv := NewServer(&mockBackend{}, nil, Options{})
	result := callTool(t, srv, "service_status", nil)
	assert.False(t, result.IsError)
	assert.Contains(t, getTextContent(t, result), `"codellama_available":true`)

	srv = NewServer(&mockBackend{healthErr: errors.New("dial tcp: refused")}, nil, Options{})
	result = callTool(t, srv, "service_status", nil)
	assert.True(t, result.IsError)
}

func TestMCPServer(t *testing.T) {
	srv := NewServer(&mockBackend{}, nil, Options{Version: "1.2.3"})
	assert.NotNil(t, srv.MCPServer())
	assert.True(t, srv.Mode().Enabled(), "privacy-first by default")
	for _, name := range []string{
		"analyze_file", "analyze_code", "analyze_project", "fix_vulnerability",
		"last_results", "toggle_privacy_mode", "privacy_status", "list_languages", "service_status",
	} {
		assert.Contains(t, srv.handlers, name)
	}
}

func TestLastResults_ReplacedByEachAnalysis(t *testing.T) {
	backend := &mockBackend{}
	srv := NewServer(backend, nil, Options{})

	var table struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, callTool(t, srv, "last_results", nil))), &table))
	assert.Equal(t, []string{"Line", "Type", "Severity", "CWE", "Message"}, table.Columns)
	assert.Empty(t, table.Rows)

	backend.vulns = []domain.Vulnerability{
		{Type: "sqli", Severity: "HIGH", Line: 3, Message: "concat"},
		{Type: "xss", Severity: "LOW", Line: 9, Message: "innerHTML", CWE: "CWE-79"},
	}
	callTool(t, srv, "analyze_code", map[string]interface{}{"code": "q = 'x' + y", "language": "javascript"})
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, callTool(t, srv, "last_results", nil))), &table))
	assert.Equal(t, [][]string{
		{"3", "sqli", "HIGH", "N/A", "concat"},
		{"9", "xss", "LOW", "CWE-79", "innerHTML"},
	}, table.Rows)

	backend.err = errors.New("boom")
	callTool(t, srv, "analyze_code", map[string]interface{}{"code": "x"})
	table.Rows = nil
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, callTool(t, srv, "last_results", nil))), &table))
	assert.Len(t, table.Rows, 2, "failed analysis leaves the table unchanged")

	backend.err = nil
	backend.vulns = nil
	callTool(t, srv, "analyze_file", map[string]interface{}{"path": sourceFile(t, "ok.py", "x = 1")})
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, callTool(t, srv, "last_results", nil))), &table))
	assert.Empty(t, table.Rows)
}
