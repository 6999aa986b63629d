// Package walker traverses a root directory and collects the entries accepted by a filter.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/filter"
	"github.com/temirov/fcom/internal/types"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorRootStatFormat wraps ErrInvalidRoot when the root cannot be inspected.
	errorRootStatFormat = "%w: %s: %v"
	// errorRootNotDirectoryFormat wraps ErrInvalidRoot when the root is a file.
	errorRootNotDirectoryFormat = "%w: %s is not a directory"

	warningSkipDirectoryMessage = "skipping unreadable directory"
	warningBrokenLinkMessage    = "skipping broken symbolic link"
	debugLinkedDirectoryMessage = "not following symbolic link to directory"
	debugIrregularFileMessage   = "skipping irregular file"

	pathSeparator = "/"
)

// ResolveRoot returns the cleaned absolute form of rootPath after verifying it is a directory.
func ResolveRoot(rootPath string) (string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)
	rootInfo, rootStatError := os.Stat(cleanedRootPath)
	if rootStatError != nil {
		return "", fmt.Errorf(errorRootStatFormat, types.ErrInvalidRoot, rootPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf(errorRootNotDirectoryFormat, types.ErrInvalidRoot, rootPath)
	}
	return cleanedRootPath, nil
}

// Walk performs a pre-order depth-first traversal of rootPath. Directories
// precede files among siblings and each group is sorted by name. Rejected
// directories are neither emitted nor descended into. Unreadable directories
// are logged and skipped; only an invalid root is reported as an error.
func Walk(rootPath string, entryFilter *filter.Filter, logger *zap.Logger) ([]types.FileEntry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absoluteRootPath, rootError := ResolveRoot(rootPath)
	if rootError != nil {
		return nil, rootError
	}

	var entries []types.FileEntry
	pending := readChildren(absoluteRootPath, "", 1, entryFilter, logger)
	reverseEntries(pending)
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		entries = append(entries, current)
		if !current.IsDirectory {
			continue
		}
		children := readChildren(current.AbsolutePath, current.Path, current.Depth+1, entryFilter, logger)
		reverseEntries(children)
		pending = append(pending, children...)
	}
	return entries, nil
}

// readChildren lists the accepted direct children of a directory in emission order.
func readChildren(absoluteDirectoryPath string, relativeDirectoryPath string, depth int, entryFilter *filter.Filter, logger *zap.Logger) []types.FileEntry {
	directoryEntries, readDirectoryError := os.ReadDir(absoluteDirectoryPath)
	if readDirectoryError != nil {
		logger.Warn(warningSkipDirectoryMessage, zap.String("path", absoluteDirectoryPath), zap.Error(readDirectoryError))
		return nil
	}

	children := make([]types.FileEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childAbsolutePath := filepath.Join(absoluteDirectoryPath, directoryEntry.Name())
		childRelativePath := directoryEntry.Name()
		if relativeDirectoryPath != "" {
			childRelativePath = relativeDirectoryPath + pathSeparator + directoryEntry.Name()
		}

		isDirectory, accepted := classifyEntry(directoryEntry, childAbsolutePath, logger)
		if !accepted || !entryFilter.ShouldInclude(childRelativePath, isDirectory) {
			continue
		}
		children = append(children, types.FileEntry{
			Path:         childRelativePath,
			AbsolutePath: childAbsolutePath,
			Depth:        depth,
			IsDirectory:  isDirectory,
		})
	}

	sort.SliceStable(children, func(left, right int) bool {
		if children[left].IsDirectory != children[right].IsDirectory {
			return children[left].IsDirectory
		}
		return children[left].Path < children[right].Path
	})
	return children
}

// classifyEntry resolves whether the entry is a directory and whether it may be listed at all.
// Symbolic links to directories are never followed, which rules out traversal cycles.
func classifyEntry(directoryEntry fs.DirEntry, absolutePath string, logger *zap.Logger) (bool, bool) {
	entryType := directoryEntry.Type()
	if entryType&fs.ModeSymlink != 0 {
		targetInfo, targetStatError := os.Stat(absolutePath)
		if targetStatError != nil {
			logger.Warn(warningBrokenLinkMessage, zap.String("path", absolutePath), zap.Error(targetStatError))
			return false, false
		}
		if targetInfo.IsDir() {
			logger.Debug(debugLinkedDirectoryMessage, zap.String("path", absolutePath))
			return false, false
		}
		if !targetInfo.Mode().IsRegular() {
			logger.Debug(debugIrregularFileMessage, zap.String("path", absolutePath))
			return false, false
		}
		return false, true
	}
	if directoryEntry.IsDir() {
		return true, true
	}
	if !entryType.IsRegular() {
		logger.Debug(debugIrregularFileMessage, zap.String("path", absolutePath))
		return false, false
	}
	return false, true
}

func reverseEntries(entries []types.FileEntry) {
	for left, right := 0, len(entries)-1; left < right; left, right = left+1, right-1 {
		entries[left], entries[right] = entries[right], entries[left]
	}
}
