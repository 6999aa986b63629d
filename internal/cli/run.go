package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/config"
	"github.com/temirov/fcom/internal/filter"
	"github.com/temirov/fcom/internal/output"
	"github.com/temirov/fcom/internal/render"
	"github.com/temirov/fcom/internal/tokenizer"
	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
	"github.com/temirov/fcom/internal/walker"
)

const (
	defaultRootPath = "."
	parentDirectory = ".."
	lineTerminator  = "\n"

	combineSuccessFormat = "All files have been processed and combined into '%s' using %s mode."
	treeSuccessFormat    = "Folder tree has been generated and saved to '%s'."
	listSuccessFormat    = "File list has been generated and saved to '%s'."
	initSuccessFormat    = "Configuration written to '%s'."

	errorOutputPathFormat = "resolve output path %s: %w"

	debugWalkCompleteMessage    = "walk complete"
	debugCombineCompleteMessage = "combine complete"
	warningClipboardMessage     = "failed to copy output to clipboard"
	warningTokenizerMessage     = "token counting unavailable"
	infoTokenCountMessage       = "token count"
)

// walkRequest is the resolved input of one walking command.
type walkRequest struct {
	root        string
	destination string
	options     walkOptions
}

// prepareWalk validates the root before anything is written and resolves the destination.
func prepareWalk(arguments []string, options walkOptions) (walkRequest, error) {
	rootArgument := defaultRootPath
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}
	absoluteRoot, rootError := walker.ResolveRoot(rootArgument)
	if rootError != nil {
		return walkRequest{}, rootError
	}
	destination := options.outputPath
	if destination != utils.StdoutOutputPath {
		absoluteDestination, absoluteError := filepath.Abs(destination)
		if absoluteError != nil {
			return walkRequest{}, fmt.Errorf(errorOutputPathFormat, destination, absoluteError)
		}
		destination = absoluteDestination
	}
	return walkRequest{root: absoluteRoot, destination: destination, options: options}, nil
}

// excludedPaths keeps the destination and its lock file out of the walk when they live under the root.
func (request walkRequest) excludedPaths() []string {
	if request.destination == utils.StdoutOutputPath {
		return nil
	}
	relativePath, relativeError := filepath.Rel(request.root, request.destination)
	if relativeError != nil || relativePath == parentDirectory || strings.HasPrefix(relativePath, parentDirectory+string(filepath.Separator)) {
		return nil
	}
	slashPath := filepath.ToSlash(relativePath)
	return []string{slashPath, slashPath + output.LockFileSuffix}
}

// walk builds the filter from defaults, flags and ignore files, then traverses the root.
func (app *application) walk(request walkRequest) (render.Context, error) {
	var ignoredFolderNames []string
	if !request.options.noDefaultIgnore {
		ignoredFolderNames = append(ignoredFolderNames, types.DefaultIgnoredFolderNames...)
	}
	ignoredFolderNames = utils.DeduplicatePatterns(append(ignoredFolderNames, utils.SplitList(request.options.ignoredFolders)...))

	ignorePatterns, ignoreError := config.LoadRecursiveIgnorePatterns(request.root, config.IgnoreOptions{
		UseGitignore:       !request.options.noGitignore,
		UseIgnoreFile:      !request.options.noIgnoreFile,
		SkippedFolderNames: ignoredFolderNames,
	}, app.logger)
	if ignoreError != nil {
		return render.Context{}, ignoreError
	}

	entryFilter := filter.New(filter.Config{
		AllowedExtensions:  utils.SplitList(request.options.extensions),
		IgnoredFolderNames: ignoredFolderNames,
		IgnorePatterns:     ignorePatterns,
		ExcludedPaths:      request.excludedPaths(),
	})
	entries, walkError := walker.Walk(request.root, entryFilter, app.logger)
	if walkError != nil {
		return render.Context{}, walkError
	}
	app.logger.Debug(debugWalkCompleteMessage,
		zap.String("root", request.root),
		zap.Int("entries", len(entries)),
		zap.Int("ignorePatterns", len(ignorePatterns)))
	return render.Context{Root: request.root, Entries: entries, Logger: app.logger}, nil
}

// deliver writes content to the destination and optionally mirrors it to the clipboard.
func (app *application) deliver(command *cobra.Command, request walkRequest, content string) error {
	if writeError := output.Write(request.destination, []byte(content), command.OutOrStdout()); writeError != nil {
		return writeError
	}
	if request.options.copyToClipboard {
		if copyError := app.dependencies.Clipboard.Copy(content); copyError != nil {
			app.logger.Warn(warningClipboardMessage, zap.Error(copyError))
		}
	}
	return nil
}

func (app *application) runCombine(command *cobra.Command, arguments []string, options combineOptions) error {
	request, prepareError := prepareWalk(arguments, options.walkOptions)
	if prepareError != nil {
		return prepareError
	}
	if modeError := render.ValidateMode(options.mode); modeError != nil {
		return modeError
	}
	var templates *render.TemplatePair
	if render.NormalizeMode(options.mode) == types.ModeCustom {
		loadedTemplates, templateError := render.LoadTemplatePair(options.outputTemplatePath, options.fileTemplatePath)
		if templateError != nil {
			return templateError
		}
		templates = loadedTemplates
	}

	renderContext, walkError := app.walk(request)
	if walkError != nil {
		return walkError
	}
	renderContext.Options = render.Options{AddLineNumbers: options.addLineNumbers, Templates: templates}
	result, combineError := render.Combine(renderContext, options.mode)
	if combineError != nil {
		return combineError
	}
	app.logger.Debug(debugCombineCompleteMessage,
		zap.Int("files", result.Files),
		zap.String("size", utils.FormatFileSize(result.Bytes)),
		zap.Int("skipped", len(result.Skipped)))

	if deliverError := app.deliver(command, request, result.Output); deliverError != nil {
		return deliverError
	}
	if options.tokensEnabled {
		app.logTokenCount(result.Output, options.tokenModel)
	}
	printSuccess(command.OutOrStdout(), request.destination, combineSuccessFormat, options.outputPath, render.NormalizeMode(options.mode))
	return nil
}

func (app *application) runListing(command *cobra.Command, arguments []string, options walkOptions, renderListing func(render.Context) string, successFormat string) error {
	request, prepareError := prepareWalk(arguments, options)
	if prepareError != nil {
		return prepareError
	}
	renderContext, walkError := app.walk(request)
	if walkError != nil {
		return walkError
	}
	if deliverError := app.deliver(command, request, renderListing(renderContext)); deliverError != nil {
		return deliverError
	}
	printSuccess(command.OutOrStdout(), request.destination, successFormat, options.outputPath)
	return nil
}

func (app *application) logTokenCount(content string, model string) {
	counter, resolvedModel, counterError := app.dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		app.logger.Warn(warningTokenizerMessage, zap.Error(counterError))
		return
	}
	countResult, countError := tokenizer.CountBytes(counter, []byte(content))
	if countError != nil {
		app.logger.Warn(warningTokenizerMessage, zap.Error(countError))
		return
	}
	if countResult.Counted {
		app.logger.Info(infoTokenCountMessage, zap.Int("tokens", countResult.Tokens), zap.String("model", resolvedModel))
	}
}

// printSuccess prints the confirmation line unless the artifact itself went to standard output.
func printSuccess(writer io.Writer, destination string, format string, arguments ...any) {
	if destination == utils.StdoutOutputPath {
		return
	}
	successColor := color.New(color.FgGreen)
	_, _ = successColor.Fprintf(writer, format+lineTerminator, arguments...)
}
