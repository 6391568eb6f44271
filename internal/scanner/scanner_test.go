package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherwynjoel/hybridllm/internal/collector"
	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// mockAnalyzer implements Analyzer for testing purposes.
type mockAnalyzer struct {
	mu       sync.Mutex
	findings map[string][]domain.Vulnerability
	fail     map[string]error
	calls    []string
	privacy  []bool
	onCall   func(path string)
}

func (m *mockAnalyzer) AnalyzeFile(ctx context.Context, path string, privacyFirst bool) (*domain.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, filepath.Base(path))
	m.privacy = append(m.privacy, privacyFirst)
	m.mu.Unlock()
	if m.onCall != nil {
		m.onCall(path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.fail[filepath.Base(path)]; ok {
		return nil, err
	}
	return domain.NewResult(path, domain.DetectLanguage(path), m.findings[filepath.Base(path)]), nil
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("pass\n"), 0o644))
	}
}

func vulns(n int) []domain.Vulnerability {
	out := make([]domain.Vulnerability, n)
	for i := range out {
		out[i] = domain.Vulnerability{Type: "t", Severity: "high", Line: i + 1}
	}
	return out
}

func TestScanProject_CountsAndSkips(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py", "c.py", "d.py", "e.py")

	m := &mockAnalyzer{
		findings: map[string][]domain.Vulnerability{
			"a.py": vulns(2),
			"c.py": vulns(1),
		},
		fail: map[string]error{
			"b.py": errors.New("API call failed: 500"),
			"d.py": errors.New("connection refused"),
		},
	}

	report, err := NewRunner(m, nil).ScanProject(context.Background(), root, Options{PrivacyFirst: true})
	require.NoError(t, err)

	assert.Equal(t, 5, report.FilesDiscovered)
	assert.Equal(t, 3, report.FilesAnalyzed)
	assert.Equal(t, 2, report.FilesSkipped)
	assert.Equal(t, 3, report.TotalVulnerabilities)
	assert.Equal(t, 2, report.FilesWithVulnerabilities)
	assert.Equal(t, 3, report.Summary.High)
	assert.False(t, report.Canceled)
	assert.True(t, report.PrivacyFirstMode)
	assert.NotEmpty(t, report.ID)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, filepath.Join(root, "b.py"), report.Skipped[0].Path)
	assert.Contains(t, report.Skipped[0].Err, "500")

	assert.Equal(t, []string{"a.py", "b.py", "c.py", "d.py", "e.py"}, m.calls)
}

func TestScanProject_PassesPrivacyFlag(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.js")

	m := &mockAnalyzer{}
	_, err := NewRunner(m, nil).ScanProject(context.Background(), root, Options{PrivacyFirst: false})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, m.privacy)
}

func TestScanProject_HonorsCollectOptions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/a.py", "venv/lib.py", "node_modules/x.js")

	m := &mockAnalyzer{}
	report, err := NewRunner(m, nil).ScanProject(context.Background(), root, Options{
		Collect: collector.Options{ExcludeDirs: []string{"venv"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesAnalyzed)
	assert.Equal(t, []string{"a.py"}, m.calls)
}

func TestScanProject_MissingRoot(t *testing.T) {
	m := &mockAnalyzer{}
	_, err := NewRunner(m, nil).ScanProject(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestScanProject_CancelBetweenFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py", "c.py")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := &mockAnalyzer{findings: map[string][]domain.Vulnerability{"a.py": vulns(1)}}
	m.onCall = func(string) { cancel() }

	report, err := NewRunner(m, nil).ScanProject(ctx, root, Options{})
	require.NoError(t, err)

	// The in-flight call completes; no further files are started.
	assert.True(t, report.Canceled)
	assert.Equal(t, []string{"a.py"}, m.calls)
	assert.Equal(t, 1, report.FilesAnalyzed)
	assert.Equal(t, 0, report.FilesSkipped)
	assert.Equal(t, 1, report.TotalVulnerabilities)
}

func TestScanProject_Progress(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py")

	m := &mockAnalyzer{
		findings: map[string][]domain.Vulnerability{"a.py": vulns(2)},
		fail:     map[string]error{"b.py": errors.New("boom")},
	}

	var events []ProgressEvent
	_, err := NewRunner(m, nil).ScanProject(context.Background(), root, Options{
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.False(t, events[0].Done)
	assert.Equal(t, 0, events[0].Index)
	assert.Equal(t, 2, events[0].Total)
	assert.True(t, events[1].Done)
	assert.Equal(t, 2, events[1].Findings)
	assert.NoError(t, events[1].Err)
	assert.False(t, events[2].Done)
	assert.Equal(t, 1, events[2].Index)
	assert.True(t, events[3].Done)
	assert.Error(t, events[3].Err)
}

func TestScanFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x.py", "y.java")

	m := &mockAnalyzer{findings: map[string][]domain.Vulnerability{"y.java": vulns(3)}}
	report := NewRunner(m, nil).ScanFiles(context.Background(), root, []string{
		filepath.Join(root, "x.py"),
		filepath.Join(root, "y.java"),
	}, Options{PrivacyFirst: true})

	assert.Equal(t, 2, report.FilesDiscovered)
	assert.Equal(t, 2, report.FilesAnalyzed)
	assert.Equal(t, 3, report.TotalVulnerabilities)
	assert.Equal(t, domain.Java, report.Files[1].Language)
}

func TestScanFiles_Empty(t *testing.T) {
	report := NewRunner(&mockAnalyzer{}, nil).ScanFiles(context.Background(), ".", nil, Options{})
	assert.Equal(t, 0, report.FilesAnalyzed)
	assert.Equal(t, 0, report.TotalVulnerabilities)
	assert.NotNil(t, report.Files)
}
