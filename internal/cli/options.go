package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/fcom/internal/config"
	"github.com/temirov/fcom/internal/types"
)

const (
	outputFlagName              = "output"
	outputFlagShorthand         = "o"
	extensionsFlagName          = "extensions"
	extensionsFlagShorthand     = "e"
	ignoreFlagName              = "ignore"
	ignoreFlagShorthand         = "i"
	noDefaultIgnoreFlagName     = "no-default-ignore"
	noGitignoreFlagName         = "no-gitignore"
	noIgnoreFlagName            = "no-ignore"
	copyFlagName                = "copy"
	modeFlagName                = "mode"
	modeFlagShorthand           = "m"
	addLineNumbersFlagName      = "add-line-numbers"
	addLineNumbersFlagShorthand = "l"
	outputTemplateFlagName      = "custom-output-template"
	fileTemplateFlagName        = "custom-file-template"
	tokensFlagName              = "tokens"
	modelFlagName               = "model"
	configFlagName              = "config"
	verboseFlagName             = "verbose"
	versionFlagName             = "version"
	globalFlagName              = "global"
	forceFlagName               = "force"

	outputFlagDescription          = "destination file, or - for standard output"
	extensionsFlagDescription      = "only include files with these extensions (comma separated, repeatable)"
	ignoreFlagDescription          = "additional folder names to ignore (comma separated, repeatable)"
	noDefaultIgnoreFlagDescription = "do not ignore .git, node_modules and __pycache__ by default"
	noGitignoreFlagDescription     = "do not use .gitignore files"
	noIgnoreFlagDescription        = "do not use .ignore files"
	copyFlagDescription            = "also copy the output to the clipboard"
	modeFlagDescription            = "combine mode: xml, markdown or custom"
	addLineNumbersFlagDescription  = "prefix every content line with its line number"
	outputTemplateFlagDescription  = "output template file for custom mode"
	fileTemplateFlagDescription    = "per-file template file for custom mode"
	tokensFlagDescription          = "log the token count of the combined output"
	modelFlagDescription           = "tokenizer model used for token counting"
	configFlagDescription          = "configuration file (default .fcom.yaml in the working directory)"
	verboseFlagDescription         = "enable debug logging"
	versionFlagDescription         = "display application version"
	globalFlagDescription          = "write the configuration under the home directory"
	forceFlagDescription           = "overwrite an existing configuration file"
)

// walkOptions holds the flags shared by combine, tree and list.
type walkOptions struct {
	outputPath      string
	extensions      []string
	ignoredFolders  []string
	noDefaultIgnore bool
	noGitignore     bool
	noIgnoreFile    bool
	copyToClipboard bool
}

// combineOptions adds the combine-only flags.
type combineOptions struct {
	walkOptions
	mode               string
	addLineNumbers     bool
	outputTemplatePath string
	fileTemplatePath   string
	tokensEnabled      bool
	tokenModel         string
}

func addWalkFlags(command *cobra.Command, commandName string, options *walkOptions) {
	flags := command.Flags()
	flags.StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, types.DefaultOutputFileNames[commandName], outputFlagDescription)
	flags.StringSliceVarP(&options.extensions, extensionsFlagName, extensionsFlagShorthand, nil, extensionsFlagDescription)
	flags.StringSliceVarP(&options.ignoredFolders, ignoreFlagName, ignoreFlagShorthand, nil, ignoreFlagDescription)
	registerBooleanFlag(flags, &options.noDefaultIgnore, noDefaultIgnoreFlagName, "", false, noDefaultIgnoreFlagDescription)
	registerBooleanFlag(flags, &options.noGitignore, noGitignoreFlagName, "", false, noGitignoreFlagDescription)
	registerBooleanFlag(flags, &options.noIgnoreFile, noIgnoreFlagName, "", false, noIgnoreFlagDescription)
	registerBooleanFlag(flags, &options.copyToClipboard, copyFlagName, "", false, copyFlagDescription)
}

func addCombineFlags(command *cobra.Command, options *combineOptions) {
	addWalkFlags(command, types.CommandCombine, &options.walkOptions)
	flags := command.Flags()
	flags.StringVarP(&options.mode, modeFlagName, modeFlagShorthand, types.ModeXML, modeFlagDescription)
	registerBooleanFlag(flags, &options.addLineNumbers, addLineNumbersFlagName, addLineNumbersFlagShorthand, false, addLineNumbersFlagDescription)
	flags.StringVar(&options.outputTemplatePath, outputTemplateFlagName, "", outputTemplateFlagDescription)
	flags.StringVar(&options.fileTemplatePath, fileTemplateFlagName, "", fileTemplateFlagDescription)
	registerBooleanFlag(flags, &options.tokensEnabled, tokensFlagName, "", false, tokensFlagDescription)
	flags.StringVar(&options.tokenModel, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
}

// applyConfiguration fills every option whose flag was not given explicitly from configuration.
func (options *walkOptions) applyConfiguration(flags *pflag.FlagSet, configuration config.CommandConfiguration) {
	if !flags.Changed(outputFlagName) && configuration.Output != "" {
		options.outputPath = configuration.Output
	}
	if !flags.Changed(extensionsFlagName) && len(configuration.Extensions) > 0 {
		options.extensions = append([]string{}, configuration.Extensions...)
	}
	if !flags.Changed(ignoreFlagName) && len(configuration.Ignore) > 0 {
		options.ignoredFolders = append([]string{}, configuration.Ignore...)
	}
	if !flags.Changed(noDefaultIgnoreFlagName) {
		options.noDefaultIgnore = !config.BoolValue(configuration.Paths.UseDefaultIgnore, !options.noDefaultIgnore)
	}
	if !flags.Changed(noGitignoreFlagName) {
		options.noGitignore = !config.BoolValue(configuration.Paths.UseGitignore, !options.noGitignore)
	}
	if !flags.Changed(noIgnoreFlagName) {
		options.noIgnoreFile = !config.BoolValue(configuration.Paths.UseIgnoreFile, !options.noIgnoreFile)
	}
	if !flags.Changed(copyFlagName) {
		options.copyToClipboard = config.BoolValue(configuration.Clipboard, options.copyToClipboard)
	}
}

func (options *combineOptions) applyConfiguration(flags *pflag.FlagSet, configuration config.CombineConfiguration) {
	options.walkOptions.applyConfiguration(flags, configuration.CommandConfiguration)
	if !flags.Changed(modeFlagName) && configuration.Mode != "" {
		options.mode = configuration.Mode
	}
	if !flags.Changed(addLineNumbersFlagName) {
		options.addLineNumbers = config.BoolValue(configuration.AddLineNumbers, options.addLineNumbers)
	}
	if !flags.Changed(outputTemplateFlagName) && configuration.OutputTemplate != "" {
		options.outputTemplatePath = configuration.OutputTemplate
	}
	if !flags.Changed(fileTemplateFlagName) && configuration.FileTemplate != "" {
		options.fileTemplatePath = configuration.FileTemplate
	}
	if !flags.Changed(tokensFlagName) {
		options.tokensEnabled = config.BoolValue(configuration.Tokens.Enabled, options.tokensEnabled)
	}
	if !flags.Changed(modelFlagName) && configuration.Tokens.Model != "" {
		options.tokenModel = configuration.Tokens.Model
	}
}
