package render

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
)

const (
	errorUnknownModeFormat           = "%w %q; supported modes: %s"
	errorUnknownModeSuggestionFormat = "%w %q; supported modes: %s (did you mean %q?)"

	warningUnreadableFileMessage = "skipping unreadable file"
	warningBinaryFileMessage     = "skipping non-text file"

	maximumSuggestionDistance = 3
)

// CombineResult is the rendered combine artifact plus bookkeeping for the caller.
type CombineResult struct {
	Output string
	// Files counts the files whose content was rendered.
	Files int
	// Bytes is the total size of the rendered file contents before decoration.
	Bytes int64
	// Skipped lists the relative paths left out because they were unreadable or not text.
	Skipped []string
}

type loadedFile struct {
	entry   types.FileEntry
	content string
	lines   int
}

// NormalizeMode lowercases and trims mode, defaulting to xml when empty.
func NormalizeMode(mode string) string {
	normalizedMode := strings.ToLower(strings.TrimSpace(mode))
	if normalizedMode == "" {
		return types.ModeXML
	}
	return normalizedMode
}

// ValidateMode returns an ErrUnknownMode error, with a suggestion when a
// supported mode is close enough, for anything outside SupportedModes.
func ValidateMode(mode string) error {
	normalizedMode := NormalizeMode(mode)
	if utils.ContainsString(types.SupportedModes, normalizedMode) {
		return nil
	}
	supported := strings.Join(types.SupportedModes, ", ")
	if suggestion := SuggestMode(normalizedMode); suggestion != "" {
		return fmt.Errorf(errorUnknownModeSuggestionFormat, types.ErrUnknownMode, mode, supported, suggestion)
	}
	return fmt.Errorf(errorUnknownModeFormat, types.ErrUnknownMode, mode, supported)
}

// SuggestMode returns the supported mode nearest to input by edit distance, or
// an empty string when none is within reach.
func SuggestMode(input string) string {
	bestMode := ""
	bestDistance := maximumSuggestionDistance + 1
	for _, supportedMode := range types.SupportedModes {
		distance := levenshtein.ComputeDistance(input, supportedMode)
		if distance < bestDistance {
			bestMode = supportedMode
			bestDistance = distance
		}
	}
	return bestMode
}

// Combine concatenates every text file of the context in traversal order using
// the requested mode. Binary and unreadable files are skipped with a warning.
func Combine(renderContext Context, mode string) (CombineResult, error) {
	if modeError := ValidateMode(mode); modeError != nil {
		return CombineResult{}, modeError
	}
	normalizedMode := NormalizeMode(mode)
	if normalizedMode == types.ModeCustom {
		if templateError := renderContext.Options.Templates.Validate(renderContext.logger()); templateError != nil {
			return CombineResult{}, templateError
		}
	}

	files, skipped, totalBytes := loadFiles(renderContext)
	result := CombineResult{Files: len(files), Bytes: totalBytes, Skipped: skipped}
	switch normalizedMode {
	case types.ModeMarkdown:
		result.Output = renderMarkdown(renderContext, files)
	case types.ModeCustom:
		result.Output = renderCustom(renderContext, files)
	default:
		result.Output = renderXML(renderContext, files)
	}
	return result, nil
}

func loadFiles(renderContext Context) ([]loadedFile, []string, int64) {
	logger := renderContext.logger()
	var loaded []loadedFile
	var skipped []string
	var totalBytes int64
	for _, entry := range renderContext.files() {
		data, readError := renderContext.readFile(entry.AbsolutePath)
		if readError != nil {
			logger.Warn(warningUnreadableFileMessage, zap.String("path", entry.Path), zap.Error(readError))
			skipped = append(skipped, entry.Path)
			continue
		}
		if utils.IsBinary(data) {
			logger.Warn(warningBinaryFileMessage, zap.String("path", entry.Path), zap.String("mimeType", utils.DetectMimeType(data)))
			skipped = append(skipped, entry.Path)
			continue
		}
		content := string(data)
		lineCount := CountLines(content)
		if renderContext.Options.AddLineNumbers {
			content = NumberLines(content)
		}
		totalBytes += int64(len(data))
		loaded = append(loaded, loadedFile{entry: entry, content: content, lines: lineCount})
	}
	return loaded, skipped, totalBytes
}
