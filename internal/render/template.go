package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
)

// Placeholders substituted in the per-file template.
const (
	PlaceholderPath     = "{path}"
	PlaceholderName     = "{name}"
	PlaceholderContent  = "{content}"
	PlaceholderLines    = "{lines}"
	PlaceholderModified = "{modified}"
)

// Placeholders substituted in the output template.
const (
	PlaceholderFiles      = "{files}"
	PlaceholderTotalFiles = "{total_files}"
	PlaceholderRoot       = "{root}"
	PlaceholderTree       = "{tree}"
	PlaceholderFileList   = "{file_list}"
	PlaceholderDate       = "{date}"
)

const (
	errorReadTemplateFormat       = "reading template %s: %w"
	errorMissingPlaceholderFormat = "%w: output template must contain %s"
	warningMissingContentMessage  = "file template has no content placeholder; file contents will be omitted"
)

// TemplatePair holds the two texts used by the custom combine mode.
type TemplatePair struct {
	Output string
	File   string
}

// LoadTemplatePair reads both template files. Both paths are required.
func LoadTemplatePair(outputTemplatePath string, fileTemplatePath string) (*TemplatePair, error) {
	if strings.TrimSpace(outputTemplatePath) == "" || strings.TrimSpace(fileTemplatePath) == "" {
		return nil, types.ErrMissingTemplates
	}
	outputTemplate, outputReadError := os.ReadFile(outputTemplatePath)
	if outputReadError != nil {
		return nil, fmt.Errorf(errorReadTemplateFormat, outputTemplatePath, outputReadError)
	}
	fileTemplate, fileReadError := os.ReadFile(fileTemplatePath)
	if fileReadError != nil {
		return nil, fmt.Errorf(errorReadTemplateFormat, fileTemplatePath, fileReadError)
	}
	return &TemplatePair{Output: string(outputTemplate), File: string(fileTemplate)}, nil
}

// Validate rejects an output template without {files}. A file template without
// {content} is allowed but reported through the logger.
func (pair *TemplatePair) Validate(logger *zap.Logger) error {
	if pair == nil {
		return types.ErrMissingTemplates
	}
	if !strings.Contains(pair.Output, PlaceholderFiles) {
		return fmt.Errorf(errorMissingPlaceholderFormat, types.ErrMalformedTemplate, PlaceholderFiles)
	}
	if !strings.Contains(pair.File, PlaceholderContent) && logger != nil {
		logger.Warn(warningMissingContentMessage)
	}
	return nil
}

// renderCustom substitutes placeholders in a single literal pass, so text
// introduced by a substitution is never expanded again.
func renderCustom(renderContext Context, files []loadedFile) string {
	pair := renderContext.Options.Templates
	needsModified := strings.Contains(pair.File, PlaceholderModified)

	var filesBuilder strings.Builder
	for _, file := range files {
		modified := ""
		if needsModified {
			modified = file.modified()
		}
		fileReplacer := strings.NewReplacer(
			PlaceholderPath, file.entry.Path,
			PlaceholderName, file.entry.Name(),
			PlaceholderContent, file.content,
			PlaceholderLines, strconv.Itoa(file.lines),
			PlaceholderModified, modified,
		)
		filesBuilder.WriteString(fileReplacer.Replace(pair.File))
	}

	tree := ""
	if strings.Contains(pair.Output, PlaceholderTree) {
		tree = strings.TrimSuffix(Tree(renderContext), lineBreak)
	}
	fileList := ""
	if strings.Contains(pair.Output, PlaceholderFileList) {
		fileList = strings.TrimSuffix(List(renderContext), lineBreak)
	}
	outputReplacer := strings.NewReplacer(
		PlaceholderFiles, filesBuilder.String(),
		PlaceholderTotalFiles, strconv.Itoa(len(files)),
		PlaceholderRoot, renderContext.rootName(),
		PlaceholderTree, tree,
		PlaceholderFileList, fileList,
		PlaceholderDate, utils.FormatTimestamp(renderContext.now()),
	)
	return outputReplacer.Replace(pair.Output)
}

func (file loadedFile) modified() string {
	fileInfo, statError := os.Stat(file.entry.AbsolutePath)
	if statError != nil {
		return ""
	}
	return utils.FormatTimestamp(fileInfo.ModTime())
}
