// Package filter decides which paths take part in a traversal.
package filter

import (
	"path"
	"strings"

	"github.com/temirov/fcom/internal/utils"
)

const extensionSeparator = "."

// Config describes the inclusion rules of a single invocation.
type Config struct {
	// AllowedExtensions restricts files by extension; empty allows every file.
	// Values are matched case-insensitively with or without a leading dot.
	AllowedExtensions []string
	// IgnoredFolderNames excludes directories whose base name matches exactly.
	IgnoredFolderNames []string
	// IgnorePatterns holds .gitignore style patterns relative to the walk root.
	IgnorePatterns []string
	// ExcludedPaths lists root-relative paths that are never included.
	ExcludedPaths []string
}

// Filter is the immutable, normalized form of Config.
type Filter struct {
	extensions     []string
	ignoredFolders map[string]struct{}
	ignorePatterns []string
	excludedPaths  map[string]struct{}
}

// New normalizes the configuration into a Filter.
func New(config Config) *Filter {
	filter := &Filter{
		ignoredFolders: make(map[string]struct{}, len(config.IgnoredFolderNames)),
		excludedPaths:  make(map[string]struct{}, len(config.ExcludedPaths)),
		ignorePatterns: utils.DeduplicatePatterns(config.IgnorePatterns),
	}
	for _, extension := range config.AllowedExtensions {
		normalized := NormalizeExtension(extension)
		if normalized == "" || utils.ContainsString(filter.extensions, normalized) {
			continue
		}
		filter.extensions = append(filter.extensions, normalized)
	}
	for _, folderName := range config.IgnoredFolderNames {
		trimmed := strings.TrimSpace(folderName)
		if trimmed != "" {
			filter.ignoredFolders[trimmed] = struct{}{}
		}
	}
	for _, excludedPath := range config.ExcludedPaths {
		filter.excludedPaths[path.Clean(excludedPath)] = struct{}{}
	}
	return filter
}

// NormalizeExtension lowercases an extension and strips surrounding blanks and the leading dot.
func NormalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), extensionSeparator))
}

// ShouldInclude reports whether the root-relative path takes part in the output.
// An excluded directory must not be descended into.
func (filter *Filter) ShouldInclude(relativePath string, isDirectory bool) bool {
	if filter == nil {
		return true
	}
	if _, excluded := filter.excludedPaths[relativePath]; excluded {
		return false
	}
	baseName := path.Base(relativePath)
	if isDirectory {
		if _, ignored := filter.ignoredFolders[baseName]; ignored {
			return false
		}
	} else if !filter.matchesExtension(baseName) {
		return false
	}
	return !utils.ShouldIgnoreByPath(relativePath, isDirectory, filter.ignorePatterns)
}

// AllowsAllExtensions reports whether no extension restriction is configured.
func (filter *Filter) AllowsAllExtensions() bool {
	return filter == nil || len(filter.extensions) == 0
}

func (filter *Filter) matchesExtension(fileName string) bool {
	if len(filter.extensions) == 0 {
		return true
	}
	lowerName := strings.ToLower(fileName)
	for _, extension := range filter.extensions {
		if strings.HasSuffix(lowerName, extensionSeparator+extension) {
			return true
		}
	}
	return false
}
