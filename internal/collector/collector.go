// Package collector finds the source files of a project that should be sent
// to the analysis service.
package collector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// DefaultExcludeDirs are never descended into, at any depth.
var DefaultExcludeDirs = []string{"node_modules", ".git", "__pycache__"}

// Options extends the fixed exclusion rules.
type Options struct {
	// ExcludeDirs are additional directory names to prune.
	ExcludeDirs []string
	// IgnorePatterns are doublestar globs matched against the slash-separated
	// path relative to the root. Matching directories are pruned and matching
	// files dropped.
	IgnorePatterns []string
}

// Summary describes how a traversal ended.
type Summary struct {
	Diagnostics []domain.Diagnostic
	Canceled    bool
}

// Collection is the materialized output of Collect.
type Collection struct {
	Summary
	Root  string
	Files []string
}

// Validate checks the ignore patterns.
func (o Options) Validate() error {
	for _, p := range o.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("malformed ignore pattern %q", p)
		}
	}
	return nil
}

func (o Options) excludedNames() map[string]struct{} {
	names := make(map[string]struct{}, len(DefaultExcludeDirs)+len(o.ExcludeDirs))
	for _, n := range DefaultExcludeDirs {
		names[n] = struct{}{}
	}
	for _, n := range o.ExcludeDirs {
		if n != "" {
			names[n] = struct{}{}
		}
	}
	return names
}

func (o Options) ignored(rel string) bool {
	for _, p := range o.IgnorePatterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// CheckRoot returns an error unless root is an existing, readable directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project directory: %s is not a directory", root)
	}
	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("project directory: %w", err)
	}
	return f.Close()
}

// Walk visits root depth-first in lexical order and calls fn for every
// supported source file. Cancellation is checked before each directory is
// enumerated; when ctx is done the walk stops and Summary.Canceled is set.
// Unreadable directories are skipped and reported as diagnostics. An error
// returned by fn aborts the walk and is returned as is.
func Walk(ctx context.Context, root string, opts Options, fn func(path string) error) (Summary, error) {
	var summary Summary

	if err := CheckRoot(root); err != nil {
		return summary, err
	}
	if err := opts.Validate(); err != nil {
		return summary, err
	}
	excluded := opts.excludedNames()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return err
			}
			summary.Diagnostics = append(summary.Diagnostics, domain.Diagnostic{Path: path, Err: err.Error()})
			return nil
		}

		rel := relPath(root, path)

		if d.IsDir() {
			if path != root {
				if _, skip := excluded[d.Name()]; skip {
					return filepath.SkipDir
				}
				if opts.ignored(rel) {
					return filepath.SkipDir
				}
			}
			if ctx.Err() != nil {
				summary.Canceled = true
				return filepath.SkipAll
			}
			return nil
		}

		if !domain.IsSupportedFile(d.Name()) || opts.ignored(rel) {
			return nil
		}
		return fn(path)
	})
	return summary, err
}

// Collect gathers the files Walk would visit.
func Collect(ctx context.Context, root string, opts Options) (*Collection, error) {
	c := &Collection{Root: root, Files: []string{}}
	summary, err := Walk(ctx, root, opts, func(path string) error {
		c.Files = append(c.Files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Summary = summary
	return c, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
