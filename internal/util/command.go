package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external command execution for testability.
type CommandRunner interface {
	// Run executes a command and returns its stdout trimmed.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// RunLines executes a command and returns its non-empty stdout lines.
	RunLines(ctx context.Context, name string, args ...string) ([]string, error)
	// IsInstalled checks if a command is available in PATH.
	IsInstalled(name string) bool
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (r ExecRunner) RunLines(ctx context.Context, name string, args ...string) ([]string, error) {
	output, err := r.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func (ExecRunner) IsInstalled(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// MockResponse holds a predefined response for MockCommandRunner.
type MockResponse struct {
	Output string
	Err    error
}

// MockCommandRunner maps "name arg1 arg2" keys to predefined responses. For testing.
type MockCommandRunner struct {
	Responses map[string]MockResponse
	Installed map[string]bool
	Calls     []string
}

func (m *MockCommandRunner) key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (m *MockCommandRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	k := m.key(name, args...)
	m.Calls = append(m.Calls, k)

	resp, ok := m.Responses[k]
	if !ok {
		return "", fmt.Errorf("mock: unknown command %q", k)
	}
	return resp.Output, resp.Err
}

func (m *MockCommandRunner) RunLines(ctx context.Context, name string, args ...string) ([]string, error) {
	output, err := m.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func (m *MockCommandRunner) IsInstalled(name string) bool {
	return m.Installed[name]
}

// splitLines splits s by newlines and drops blank lines.
func splitLines(s string) []string {
	result := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
