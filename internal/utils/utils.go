// Package utils contains general helper functions used across the fcom tool.
package utils

import (
	"path/filepath"
	"strings"
)

// Ignore file constants used across the project.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName    = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
)

const (
	pathSegmentSeparator = "/"
	anchorPrefix         = "/"
	negationPrefix       = "!"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// SplitList flattens comma separated values, trimming blanks and dropping empty items.
func SplitList(values []string) []string {
	var result []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			trimmedItem := strings.TrimSpace(item)
			if trimmedItem != "" {
				result = append(result, trimmedItem)
			}
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// ShouldIgnoreByPath reports whether a path relative to the processing root
// matches any ignore pattern. The candidate path and every pattern are converted
// to forward-slash form before evaluation.
//
// A pattern ending with a slash only matches directories, and every path below
// such a directory. A pattern without a slash matches the base name of the path
// or of any of its ancestors. A pattern containing a slash, or starting with one,
// is anchored at the processing root and matched segment by segment. Each segment
// uses filepath.Match semantics. Negated patterns are not supported and never match.
func ShouldIgnoreByPath(relativePath string, isDirectory bool, ignorePatterns []string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.ReplaceAll(strings.TrimSpace(patternValue), "\\", pathSegmentSeparator)
		if normalizedPattern == "" || strings.HasPrefix(normalizedPattern, negationPrefix) {
			continue
		}

		isDirectoryPattern := strings.HasSuffix(normalizedPattern, pathSegmentSeparator)
		isAnchored := strings.HasPrefix(normalizedPattern, anchorPrefix)
		trimmedPattern := strings.Trim(normalizedPattern, pathSegmentSeparator)
		if trimmedPattern == "" {
			continue
		}
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)

		if len(patternSegments) == 1 && !isAnchored {
			if matchesAnySegment(pathSegments, patternSegments[0], isDirectory, isDirectoryPattern) {
				return true
			}
			continue
		}

		if len(pathSegments) < len(patternSegments) || !segmentsMatch(pathSegments[:len(patternSegments)], patternSegments) {
			continue
		}
		if len(pathSegments) > len(patternSegments) || !isDirectoryPattern || isDirectory {
			return true
		}
	}

	return false
}

// matchesAnySegment checks the pattern against the last segment and, because
// ancestors are always directories, against every ancestor segment.
func matchesAnySegment(pathSegments []string, pattern string, isDirectory bool, directoryOnly bool) bool {
	lastIndex := len(pathSegments) - 1
	for segmentIndex, segment := range pathSegments {
		if segmentIndex == lastIndex && directoryOnly && !isDirectory {
			continue
		}
		isMatched, matchError := filepath.Match(pattern, segment)
		if matchError == nil && isMatched {
			return true
		}
	}
	return false
}

// segmentsMatch reports whether each pattern segment matches the corresponding
// path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
