// Package vcs discovers files staged for commit.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sherwynjoel/hybridllm/internal/domain"
	"github.com/sherwynjoel/hybridllm/internal/util"
)

// ErrGitMissing is returned when git is not on PATH.
var ErrGitMissing = errors.New("git is not installed")

// RepoRoot returns the top-level directory of the work tree containing dir.
func RepoRoot(ctx context.Context, runner util.CommandRunner, dir string) (string, error) {
	if !runner.IsInstalled("git") {
		return "", ErrGitMissing
	}
	out, err := runner.Run(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%s is not inside a git work tree: %w", dir, err)
	}
	return filepath.FromSlash(out), nil
}

// StagedFiles lists files added, copied or modified in the index of the
// repository containing dir, keeping only supported source files. Paths are
// absolute.
func StagedFiles(ctx context.Context, runner util.CommandRunner, dir string) (root string, files []string, err error) {
	root, err = RepoRoot(ctx, runner, dir)
	if err != nil {
		return "", nil, err
	}
	lines, err := runner.RunLines(ctx, "git", "-C", root, "diff", "--cached", "--name-only", "--diff-filter=ACM")
	if err != nil {
		return "", nil, fmt.Errorf("listing staged files: %w", err)
	}

	files = make([]string, 0, len(lines))
	for _, rel := range lines {
		if !domain.IsSupportedFile(rel) {
			continue
		}
		files = append(files, filepath.Join(root, filepath.FromSlash(rel)))
	}
	return root, files, nil
}
