// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/config"
	"github.com/temirov/fcom/internal/render"
	"github.com/temirov/fcom/internal/services/clipboard"
	"github.com/temirov/fcom/internal/tokenizer"
	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
)

const (
	versionTemplate      = "fcom version: %s\n"
	rootUse              = "fcom"
	rootShortDescription = "combine, list and draw the files of a directory"
	rootLongDescription  = `fcom walks a directory and writes one artifact: the combined contents of its
files (combine), an indented folder tree (tree), or a flat file list (list).
Folders named .git, node_modules and __pycache__ are skipped by default, and
.gitignore and .ignore files are honored. Defaults can be stored in
~/.fcom/config.yaml and .fcom.yaml; see fcom init.`

	combineUse              = "combine [root]"
	treeUse                 = "tree [root]"
	listUse                 = "list [root]"
	initUse                 = "init"
	combineShortDescription = "combine file contents into one document"
	treeShortDescription    = "write an indented folder tree"
	listShortDescription    = "write a flat list of file paths"
	initShortDescription    = "write a default configuration file"

	// combineLongDescription provides detailed help for the combine command.
	combineLongDescription = `Concatenate every text file under root into one document.
Use --mode to select xml, markdown or custom output. Custom mode reads an output
template containing {files} and a per-file template using {path}, {name},
{content}, {lines} and {modified}. The output template may also use
{total_files}, {root}, {tree}, {file_list} and {date}.`
	// combineUsageExample demonstrates combine command usage.
	combineUsageExample = `  # Combine Go and Markdown files as XML into output.txt
  fcom combine -e go,md .

  # Print numbered Markdown to standard output
  fcom combine --mode markdown -l -o - ./src

  # Render with custom templates
  fcom combine --mode custom --custom-output-template out.tmpl --custom-file-template file.tmpl`

	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Save the tree of the current directory to folder_tree.txt
  fcom tree

  # Print the tree without the default ignore list
  fcom tree --no-default-ignore -o - .`

	// listUsageExample demonstrates list command usage.
	listUsageExample = `  # List only YAML files, skipping vendor folders
  fcom list -e yaml -i vendor .`
)

// Dependencies holds the replaceable services used by the commands.
type Dependencies struct {
	Clipboard  clipboard.Copier
	NewCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
}

type application struct {
	logger       *zap.Logger
	dependencies Dependencies
	configPath   string
	verbose      bool
}

// Execute runs the fcom application with the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(logger, Dependencies{})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command and its subcommands.
func NewRootCommand(logger *zap.Logger, dependencies Dependencies) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	app := &application{logger: logger, dependencies: dependencies}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if !app.verbose {
				return nil
			}
			verboseLogger, loggerError := utils.NewApplicationLogger(true)
			if loggerError != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
			}
			app.logger = verboseLogger
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			return command.Help()
		},
	}
	registerBooleanFlag(rootCommand.Flags(), &showVersion, versionFlagName, "", false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, "", false, verboseFlagDescription)
	rootCommand.AddCommand(
		createCombineCommand(app),
		createListingCommand(app, types.CommandTree, treeUse, treeShortDescription, treeUsageExample, render.Tree, treeSuccessFormat),
		createListingCommand(app, types.CommandList, listUse, listShortDescription, listUsageExample, render.List, listSuccessFormat),
		createInitCommand(app),
	)
	return rootCommand
}

func (app *application) loadConfiguration() (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configPath})
}

// createCombineCommand returns the combine subcommand.
func createCombineCommand(app *application) *cobra.Command {
	var options combineOptions
	combineCommand := &cobra.Command{
		Use:     combineUse,
		Short:   combineShortDescription,
		Long:    combineLongDescription,
		Example: combineUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := app.loadConfiguration()
			if configurationError != nil {
				return configurationError
			}
			options.applyConfiguration(command.Flags(), configuration.Combine)
			return app.runCombine(command, arguments, options)
		},
	}
	addCombineFlags(combineCommand, &options)
	return combineCommand
}

// createListingCommand returns the tree or list subcommand, which differ only in their renderer.
func createListingCommand(app *application, commandName string, use string, short string, example string, renderListing func(render.Context) string, successFormat string) *cobra.Command {
	var options walkOptions
	listingCommand := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := app.loadConfiguration()
			if configurationError != nil {
				return configurationError
			}
			commandConfiguration := configuration.Tree
			if commandName == types.CommandList {
				commandConfiguration = configuration.List
			}
			options.applyConfiguration(command.Flags(), commandConfiguration)
			return app.runListing(command, arguments, options, renderListing, successFormat)
		},
	}
	addWalkFlags(listingCommand, commandName, &options)
	return listingCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			app.logger.Debug(initShortDescription, zap.String("path", destinationPath))
			printSuccess(command.OutOrStdout(), destinationPath, initSuccessFormat, destinationPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, "", false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, "", false, forceFlagDescription)
	return initCommand
}
