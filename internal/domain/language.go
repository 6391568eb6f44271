package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language is the tag sent to the analysis service.
type Language string

const (
	Python     Language = "python"
	Java       Language = "java"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Cpp        Language = "cpp"
	C          Language = "c"
)

// DefaultLanguage is used for file suffixes missing from the language table.
const DefaultLanguage = Python

// suffixes maps lowercased file suffixes to language tags.
var suffixes = map[string]Language{
	".py":   Python,
	".java": Java,
	".js":   JavaScript,
	".ts":   TypeScript,
	".cpp":  Cpp,
	".cc":   Cpp,
	".cxx":  Cpp,
	".c":    C,
}

// SupportedExtensions lists the extensions (without dot) picked up by
// project traversal and accepted by the single-file commands.
var SupportedExtensions = []string{"py", "java", "js", "ts", "cpp", "c"}

// Languages returns all known language tags in a stable order.
func Languages() []Language {
	return []Language{Python, Java, JavaScript, TypeScript, Cpp, C}
}

// LookupLanguage returns the language for path's suffix, case-insensitively.
func LookupLanguage(path string) (Language, bool) {
	lang, ok := suffixes[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// DetectLanguage is LookupLanguage with DefaultLanguage as fallback.
func DetectLanguage(path string) Language {
	if lang, ok := LookupLanguage(path); ok {
		return lang
	}
	return DefaultLanguage
}

// Suffixes returns the file suffixes mapped to lang, sorted.
func Suffixes(lang Language) []string {
	var out []string
	for suffix, l := range suffixes {
		if l == lang {
			out = append(out, suffix)
		}
	}
	sort.Strings(out)
	return out
}

// ParseLanguage validates a language tag given by a user.
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Languages() {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// IsSupportedFile reports whether path has one of SupportedExtensions.
func IsSupportedFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
