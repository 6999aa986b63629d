// Package config loads ignore files and the layered application configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/utils"
)

const (
	commentPrefix  = "#"
	negationPrefix = "!"
	anchorPrefix   = "/"

	warningCloseIgnoreFileMessage = "failed to close ignore file"
	warningIgnoreFileMessage      = "skipping unreadable ignore file"
	warningIgnoreDirectoryMessage = "skipping unreadable directory while loading ignore files"
	errorLoadRootIgnoreFileFormat = "loading %s from %s: %w"
)

// IgnoreOptions selects which ignore files contribute patterns.
type IgnoreOptions struct {
	UseGitignore  bool
	UseIgnoreFile bool
	// SkippedFolderNames are never entered while searching for nested ignore files.
	SkippedFolderNames []string
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns. A missing
// file yields no patterns and no error. Blank lines, comments and negated
// patterns are dropped.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string, logger *zap.Logger) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if errors.Is(openFileError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && logger != nil {
			logger.Warn(warningCloseIgnoreFileMessage, zap.String("path", ignoreFilePath), zap.Error(closeError))
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) || strings.HasPrefix(trimmedLine, negationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates patterns from
// utils.IgnoreFileName and utils.GitIgnoreFileName files. Patterns found in a
// nested directory are prefixed with that directory's path relative to the root.
// An unreadable ignore file at the root is an error; one in a nested directory
// is logged and skipped. Folders named in SkippedFolderNames, and folders already
// ignored by a collected pattern, are not searched.
func LoadRecursiveIgnorePatterns(rootDirectoryPath string, options IgnoreOptions, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !options.UseGitignore && !options.UseIgnoreFile {
		return nil, nil
	}

	var aggregatedPatterns []string
	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		isRoot := currentDirectoryPath == rootDirectoryPath
		if walkError != nil {
			if isRoot {
				return walkError
			}
			logger.Warn(warningIgnoreDirectoryMessage, zap.String("path", currentDirectoryPath), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		if !isRoot {
			if utils.ContainsString(options.SkippedFolderNames, directoryEntry.Name()) ||
				utils.ShouldIgnoreByPath(relativeDirectory, true, aggregatedPatterns) {
				return filepath.SkipDir
			}
		}

		for _, ignoreFileName := range selectedIgnoreFileNames(options) {
			ignoreFilePath := filepath.Join(currentDirectoryPath, ignoreFileName)
			filePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath, logger)
			if loadError != nil {
				if isRoot {
					return fmt.Errorf(errorLoadRootIgnoreFileFormat, ignoreFileName, currentDirectoryPath, loadError)
				}
				logger.Warn(warningIgnoreFileMessage, zap.String("path", ignoreFilePath), zap.Error(loadError))
				continue
			}
			for _, pattern := range filePatterns {
				aggregatedPatterns = append(aggregatedPatterns, prefixPattern(relativeDirectory, pattern))
			}
		}
		return nil
	}

	if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
		return nil, walkError
	}
	return utils.DeduplicatePatterns(aggregatedPatterns), nil
}

func selectedIgnoreFileNames(options IgnoreOptions) []string {
	var ignoreFileNames []string
	if options.UseIgnoreFile {
		ignoreFileNames = append(ignoreFileNames, utils.IgnoreFileName)
	}
	if options.UseGitignore {
		ignoreFileNames = append(ignoreFileNames, utils.GitIgnoreFileName)
	}
	return ignoreFileNames
}

// prefixPattern anchors a pattern declared in a nested directory to that directory.
func prefixPattern(relativeDirectory string, pattern string) string {
	if relativeDirectory == "." {
		return pattern
	}
	return relativeDirectory + anchorPrefix + strings.TrimPrefix(pattern, anchorPrefix)
}
