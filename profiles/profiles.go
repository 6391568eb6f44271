// Package profiles provides embedded exclusion presets for common project
// layouts. A profile adds directory names and ignore patterns on top of the
// collector's built-in exclusions.
package profiles

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sherwynjoel/hybridllm/internal/collector"
)

//go:embed *.toml
var profileFS embed.FS

// Profile is a named exclusion preset.
type Profile struct {
	Name           string   `toml:"name"`
	Description    string   `toml:"description"`
	ExcludeDirs    []string `toml:"exclude_dirs"`
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// Options converts p into collector options.
func (p Profile) Options() collector.Options {
	return collector.Options{
		ExcludeDirs:    append([]string(nil), p.ExcludeDirs...),
		IgnorePatterns: append([]string(nil), p.IgnorePatterns...),
	}
}

// List returns names of all available profiles (without .toml extension), sorted.
func List() ([]string, error) {
	entries, err := profileFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".toml") {
			names = append(names, strings.TrimSuffix(name, ".toml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the named profile.
func Get(name string) (Profile, error) {
	data, err := profileFS.ReadFile(name + ".toml")
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q not found: %w", name, err)
	}
	var p Profile
	if _, err := toml.Decode(string(data), &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile %q: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// All returns every profile in name order.
func All() ([]Profile, error) {
	names, err := List()
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		p, err := Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Merge combines base with extra exclusions, keeping the first occurrence of
// each entry. The result keeps base's name and description.
func Merge(base Profile, extraDirs, extraPatterns []string) Profile {
	merged := base
	merged.ExcludeDirs = mergeStrings(base.ExcludeDirs, extraDirs)
	merged.IgnorePatterns = mergeStrings(base.IgnorePatterns, extraPatterns)
	return merged
}

// mergeStrings combines two string slices, deduplicating by value.
func mergeStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	result := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range extra {
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
