// Package mcp exposes the analysis client as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sherwynjoel/hybridllm/internal/client"
	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/logging"
	"github.com/sherwynjoel/hybridllm/internal/present"
	"github.com/sherwynjoel/hybridllm/internal/privacy"
	"github.com/sherwynjoel/hybridllm/internal/scanner"
)

// Backend is the analysis service as the tools see it.
type Backend interface {
	AnalyzeFile(ctx context.Context, path string, privacyFirst bool) (*domain.Result, error)
	AnalyzeCode(ctx context.Context, code string, lang domain.Language, privacyFirst bool) (*domain.Result, error)
	Fix(ctx context.Context, code string, vuln domain.Vulnerability, lang domain.Language) (string, error)
	Health(ctx context.Context) (*client.Health, error)
	Status(ctx context.Context) (*client.ServiceStatus, error)
}

// Options configure a Server.
type Options struct {
	Version string
	Collect collector.Options
	Logger  *zap.SugaredLogger
}

// Server wraps the MCP server with the analysis backend and the privacy flag
// shared by every tool call.
type Server struct {
	backend  Backend
	mode     *privacy.Mode
	runner   *scanner.Runner
	collect  collector.Options
	results  *present.Panel
	logger   *zap.SugaredLogger
	server   *server.MCPServer
	handlers map[string]server.ToolHandlerFunc
}

// NewServer creates an MCP server with all tools registered.
func NewServer(backend Backend, mode *privacy.Mode, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if mode == nil {
		mode = privacy.NewMode(true)
	}
	s := &Server{
		backend:  backend,
		mode:     mode,
		runner:   scanner.NewRunner(backend, opts.Logger),
		collect:  opts.Collect,
		results:  present.NewPanel(),
		logger:   opts.Logger,
		server:   server.NewMCPServer("hybridllm", opts.Version),
		handlers: make(map[string]server.ToolHandlerFunc),
	}

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *server.MCPServer {
	return s.server
}

// Mode returns the privacy flag the server sends with each analysis.
func (s *Server) Mode() *privacy.Mode {
	return s.mode
}

func (s *Server) registerTools() {
	s.addTool("analyze_file",
		gomcp.NewTool("analyze_file",
			gomcp.WithDescription("Analyze one source file for vulnerabilities"),
			gomcp.WithString("path",
				gomcp.Required(),
				gomcp.Description("Path to a Python, Java, JavaScript, TypeScript, C++ or C file"),
			),
		),
		s.handleAnalyzeFile,
	)

	s.addTool("analyze_code",
		gomcp.NewTool("analyze_code",
			gomcp.WithDescription("Analyze a code snippet for vulnerabilities"),
			gomcp.WithString("code",
				gomcp.Required(),
				gomcp.Description("Source code to analyze"),
			),
			gomcp.WithString("language",
				gomcp.Description("Language tag (python, java, javascript, typescript, cpp, c); defaults to python"),
			),
		),
		s.handleAnalyzeCode,
	)

	s.addTool("analyze_project",
		gomcp.NewTool("analyze_project",
			gomcp.WithDescription("Analyze every supported file under a directory and return a summary report"),
			gomcp.WithString("path",
				gomcp.Required(),
				gomcp.Description("Project root directory"),
			),
		),
		s.handleAnalyzeProject,
	)

	s.addTool("fix_vulnerability",
		gomcp.NewTool("fix_vulnerability",
			gomcp.WithDescription("Ask the service for a fixed version of code addressing one finding"),
			gomcp.WithString("code", gomcp.Required(), gomcp.Description("Source code containing the finding")),
			gomcp.WithString("language", gomcp.Description("Language tag; defaults to python")),
			gomcp.WithString("type", gomcp.Required(), gomcp.Description("Finding type")),
			gomcp.WithString("severity", gomcp.Required(), gomcp.Description("Finding severity")),
			gomcp.WithNumber("line", gomcp.Required(), gomcp.Description("1-based line of the finding")),
			gomcp.WithString("message", gomcp.Description("Finding message")),
			gomcp.WithString("cwe", gomcp.Description("CWE identifier, if any")),
		),
		s.handleFix,
	)

	s.addTool("last_results",
		gomcp.NewTool("last_results",
			gomcp.WithDescription("Return the findings table of the most recent file or snippet analysis"),
		),
		s.handleLastResults,
	)

	s.addTool("toggle_privacy_mode",
		gomcp.NewTool("toggle_privacy_mode",
			gomcp.WithDescription("Switch between privacy-first and efficiency routing"),
		),
		s.handleTogglePrivacy,
	)

	s.addTool("privacy_status",
		gomcp.NewTool("privacy_status",
			gomcp.WithDescription("Report the current routing mode"),
		),
		s.handlePrivacyStatus,
	)

	s.addTool("list_languages",
		gomcp.NewTool("list_languages",
			gomcp.WithDescription("List supported languages and their file suffixes"),
		),
		s.handleListLanguages,
	)

	s.addTool("service_status",
		gomcp.NewTool("service_status",
			gomcp.WithDescription("Check the analysis service health and model availability"),
		),
		s.handleServiceStatus,
	)
}

func (s *Server) addTool(name string, tool gomcp.Tool, handler server.ToolHandlerFunc) {
	s.handlers[name] = handler
	s.server.AddTool(tool, handler)
}

type analysisPayload struct {
	Path             string                 `json:"path,omitempty"`
	Language         domain.Language        `json:"language"`
	PrivacyFirstMode bool                   `json:"privacy_first_mode"`
	Total            int                    `json:"total"`
	Rows             [][]string             `json:"rows"`
	Vulnerabilities  []domain.Vulnerability `json:"vulnerabilities"`
}

func newAnalysisPayload(res *domain.Result, privacyFirst bool) analysisPayload {
	rows := present.Rows(res)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}
	return analysisPayload{
		Path:             res.Path,
		Language:         res.Language,
		PrivacyFirstMode: privacyFirst,
		Total:            res.Count(),
		Rows:             cells,
		Vulnerabilities:  res.Vulnerabilities,
	}
}

// handleAnalyzeFile validates the path locally before any request is made.
func (s *Server) handleAnalyzeFile(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}
	if info.IsDir() {
		return gomcp.NewToolResultError(fmt.Sprintf("%s is a directory; use analyze_project", path)), nil
	}
	if _, ok := domain.LookupLanguage(path); !ok {
		return gomcp.NewToolResultError(fmt.Sprintf("unsupported file type: %s", path)), nil
	}

	privacyFirst := s.mode.Enabled()
	res, err := s.backend.AnalyzeFile(ctx, path, privacyFirst)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}
	s.results.Show(res)
	return jsonResult(newAnalysisPayload(res, privacyFirst))
}

func (s *Server) handleAnalyzeCode(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	lang, err := languageArg(req)
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}

	privacyFirst := s.mode.Enabled()
	res, err := s.backend.AnalyzeCode(ctx, code, lang, privacyFirst)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}
	s.results.Show(res)
	return jsonResult(newAnalysisPayload(res, privacyFirst))
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	root, err := req.RequireString("path")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	if err := collector.CheckRoot(root); err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.runner.ScanProject(ctx, root, scanner.Options{
		PrivacyFirst: s.mode.Enabled(),
		Collect:      s.collect,
	})
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("project scan failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (s *Server) handleFix(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	lang, err := languageArg(req)
	if err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	vuln := domain.Vulnerability{
		Message: req.GetString("message", ""),
		CWE:     req.GetString("cwe", ""),
	}
	if vuln.Type, err = req.RequireString("type"); err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	if vuln.Severity, err = req.RequireString("severity"); err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}
	if vuln.Line, err = req.RequireInt("line"); err != nil {
		return gomcp.NewToolResultError(err.Error()), nil
	}

	fixed, err := s.backend.Fix(ctx, code, vuln, lang)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("Fix failed: %v", err)), nil
	}
	return gomcp.NewToolResultText(fixed), nil
}

type privacyPayload struct {
	PrivacyFirstMode bool   `json:"privacy_first_mode"`
	Label            string `json:"label"`
	Routing          string `json:"routing"`
}

func newPrivacyPayload(enabled bool) privacyPayload {
	d := privacy.Describe(enabled)
	return privacyPayload{PrivacyFirstMode: enabled, Label: d.Label, Routing: d.Routing}
}

// handleLastResults returns the rows currently shown, replaced by every
// successful analyze_file or analyze_code call.
func (s *Server) handleLastResults(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	rows := s.results.Rows()
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}
	return jsonResult(struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}{present.Columns, cells})
}

func (s *Server) handleTogglePrivacy(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	enabled := s.mode.Toggle()
	s.logger.Infow("privacy mode toggled", "privacy_first_mode", enabled)
	return jsonResult(newPrivacyPayload(enabled))
}

func (s *Server) handlePrivacyStatus(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	return jsonResult(newPrivacyPayload(s.mode.Enabled()))
}

func (s *Server) handleListLanguages(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	type languageInfo struct {
		Language domain.Language `json:"language"`
		Suffixes []string        `json:"suffixes"`
		Default  bool            `json:"default,omitempty"`
	}
	langs := domain.Languages()
	infos := make([]languageInfo, len(langs))
	for i, l := range langs {
		infos[i] = languageInfo{Language: l, Suffixes: domain.Suffixes(l), Default: l == domain.DefaultLanguage}
	}
	return jsonResult(infos)
}

func (s *Server) handleServiceStatus(ctx context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	health, err := s.backend.Health(ctx)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("service unreachable: %v", err)), nil
	}
	status, err := s.backend.Status(ctx)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("status check failed: %v", err)), nil
	}
	return jsonResult(struct {
		Health *client.Health        `json:"health"`
		Status *client.ServiceStatus `json:"status"`
		Client privacyPayload        `json:"client"`
	}{health, status, newPrivacyPayload(s.mode.Enabled())})
}

func languageArg(req gomcp.CallToolRequest) (domain.Language, error) {
	raw := req.GetString("language", "")
	if raw == "" {
		return domain.DefaultLanguage, nil
	}
	lang, ok := domain.ParseLanguage(raw)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", raw)
	}
	return lang, nil
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}
