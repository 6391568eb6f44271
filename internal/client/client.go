// Package client talks to the vulnerability analysis service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/logging"
)

// DefaultBaseURL is where a locally started service listens.
const DefaultBaseURL = "http://localhost:8501/api"

// Client is a thin JSON client for the analysis service. Every call is a
// single request; nothing is retried.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.SugaredLogger
	cache   *lru.Cache[string, []domain.Vulnerability]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets a whole-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache keeps up to size analysis results in memory, keyed by code,
// language and privacy mode. A size of zero or less disables caching.
func WithCache(size int) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		cache, err := lru.New[string, []domain.Vulnerability](size)
		if err == nil {
			c.cache = cache
		}
	}
}

// New creates a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

type analyzeRequest struct {
	Code             string          `json:"code"`
	Language         domain.Language `json:"language"`
	PrivacyFirstMode bool            `json:"privacy_first_mode"`
}

type fixRequest struct {
	Code          string               `json:"code"`
	Vulnerability domain.Vulnerability `json:"vulnerability"`
	Language      domain.Language      `json:"language"`
}

// AnalyzeFile reads path fully and analyzes its content. The language is
// derived from the file suffix, falling back to domain.DefaultLanguage.
func (c *Client) AnalyzeFile(ctx context.Context, path string, privacyFirst bool) (*domain.Result, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, newError("analyze", KindInput, err)
	}
	res, err := c.AnalyzeCode(ctx, string(code), domain.DetectLanguage(path), privacyFirst)
	if err != nil {
		return nil, err
	}
	res.Path = path
	return res, nil
}

// AnalyzeCode posts code to {base}/analyze and returns the parsed findings.
func (c *Client) AnalyzeCode(ctx context.Context, code string, lang domain.Language, privacyFirst bool) (*domain.Result, error) {
	key := cacheKey(code, lang, privacyFirst)
	if c.cache != nil {
		if vulns, ok := c.cache.Get(key); ok {
			c.logger.Debugw("analysis cache hit", "language", lang, "findings", len(vulns))
			return domain.NewResult("", lang, append([]domain.Vulnerability(nil), vulns...)), nil
		}
	}

	data, err := c.postJSON(ctx, "analyze", "/analyze", analyzeRequest{
		Code:             code,
		Language:         lang,
		PrivacyFirstMode: privacyFirst,
	})
	if err != nil {
		return nil, err
	}

	vulns, err := parseVulnerabilities(data)
	if err != nil {
		return nil, newError("analyze", KindProtocol, err)
	}
	if c.cache != nil {
		c.cache.Add(key, append([]domain.Vulnerability(nil), vulns...))
	}
	c.logger.Debugw("analysis complete", "language", lang, "privacy_first_mode", privacyFirst, "findings", len(vulns))
	return domain.NewResult("", lang, vulns), nil
}

// Fix asks the service for a repaired version of code addressing vuln.
func (c *Client) Fix(ctx context.Context, code string, vuln domain.Vulnerability, lang domain.Language) (string, error) {
	data, err := c.postJSON(ctx, "fix", "/fix", fixRequest{
		Code:          code,
		Vulnerability: vuln,
		Language:      lang,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		FixedCode *string `json:"fixed_code"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", newError("fix", KindProtocol, fmt.Errorf("malformed response body: %w", err))
	}
	if resp.FixedCode == nil {
		return "", newError("fix", KindProtocol, errors.New("response is missing \"fixed_code\""))
	}
	return *resp.FixedCode, nil
}

// Health is the payload of the service health endpoint.
type Health struct {
	Status    string `json:"status"`
	Framework string `json:"framework"`
	Version   string `json:"version"`
}

// ServiceStatus reports which model backends the service can reach.
type ServiceStatus struct {
	CodeLlamaAvailable bool `json:"codellama_available"`
	ChatGPTAvailable   bool `json:"chatgpt_available"`
	PrivacyFirstMode   bool `json:"privacy_first_mode"`
}

// Health queries {origin}/health, where origin is the base URL without its
// trailing /api segment.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	origin := strings.TrimSuffix(c.baseURL, "/api")
	var h Health
	if err := c.getJSON(ctx, "health", origin+"/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Status queries {base}/status.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	var s ServiceStatus
	if err := c.getJSON(ctx, "status", c.baseURL+"/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, newError(op, KindProtocol, fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, newError(op, KindTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(op, req)
}

func (c *Client) getJSON(ctx context.Context, op, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return newError(op, KindTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	data, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(op, KindProtocol, fmt.Errorf("malformed response body: %w", err))
	}
	return nil
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	c.logger.Debugw("calling analysis service", "op", op, "url", req.URL.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(op, KindTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(op, KindTransport, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, Err: serviceMessage(data)}
	}
	return data, nil
}

// serviceMessage extracts the "error" field the service puts in failure
// bodies, if any.
func serviceMessage(body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil || payload.Error == "" {
		return nil
	}
	return errors.New(payload.Error)
}
