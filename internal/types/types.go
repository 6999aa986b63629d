// Package types defines every cross‑package data structure used by the fcom CLI.
package types

import "errors"

const (
	CommandCombine = "combine"
	CommandTree    = "tree"
	CommandList    = "list"

	ModeXML      = "xml"
	ModeMarkdown = "markdown"
	ModeCustom   = "custom"
)

// SupportedModes lists the combine modes in the order they are presented to users.
var SupportedModes = []string{ModeXML, ModeMarkdown, ModeCustom}

// DefaultIgnoredFolderNames are the directory base names excluded unless disabled.
var DefaultIgnoredFolderNames = []string{".git", "node_modules", "__pycache__"}

// DefaultOutputFileNames maps each command to the destination used when --output is absent.
var DefaultOutputFileNames = map[string]string{
	CommandCombine: "output.txt",
	CommandTree:    "folder_tree.txt",
	CommandList:    "file_list.txt",
}

var (
	// ErrInvalidRoot reports a root path that is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid root directory")
	// ErrMissingTemplates reports custom mode without both template files.
	ErrMissingTemplates = errors.New("custom mode requires both --custom-output-template and --custom-file-template")
	// ErrMalformedTemplate reports a custom template lacking a required placeholder.
	ErrMalformedTemplate = errors.New("malformed template")
	// ErrUnknownMode reports an unsupported combine mode.
	ErrUnknownMode = errors.New("unknown mode")
)

// FileEntry is one file or directory discovered during traversal and accepted by the filter.
type FileEntry struct {
	// Path is relative to the walk root and always uses forward slashes.
	Path         string
	AbsolutePath string
	// Depth is 1 for direct children of the root.
	Depth       int
	IsDirectory bool
}

// Name returns the last path segment of the entry.
func (entry FileEntry) Name() string {
	for index := len(entry.Path) - 1; index >= 0; index-- {
		if entry.Path[index] == '/' {
			return entry.Path[index+1:]
		}
	}
	return entry.Path
}
