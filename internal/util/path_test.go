package util

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "config path under home", path: "~/.config/hybridllm/config.toml", want: filepath.Join(home, ".config/hybridllm/config.toml")},
		{name: "tilde alone", path: "~", want: home},
		{name: "absolute path unchanged", path: "/etc/hybridllm.toml", want: "/etc/hybridllm.toml"},
		{name: "relative path unchanged", path: "reports/scan.json", want: "reports/scan.json"},
		{name: "tilde user form unchanged", path: "~bob/x", want: "~bob/x"},
		{name: "empty", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.path))
		})
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.py")))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
}

func TestContentHash(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	content := []byte("eval(input())")
	require.NoError(t, os.WriteFile(file, content, 0o644))

	got, err := ContentHash(file)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256(content)), got)

	_, err = ContentHash(filepath.Join(dir, "missing.py"))
	assert.Error(t, err)
}

func TestContentHash_EmptyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.c")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	got, err := ContentHash(file)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "run.py")
	require.NoError(t, os.WriteFile(file, []byte("old"), 0o755))

	require.NoError(t, WriteFileAtomic(file, []byte("new")))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
