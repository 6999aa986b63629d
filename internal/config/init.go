package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	// DefaultTokenModel is the tokenizer model used when none is configured.
	DefaultTokenModel = "gpt-4o"

	yamlIndentation = 2

	errorInitWorkingDirectoryFormat = "determine working directory for configuration: %w"
	errorInitHomeDirectoryFormat    = "resolve home directory for configuration: %w"
	errorInitCreateDirectoryFormat  = "create configuration directory %s: %w"
	errorInitUnsupportedTarget      = "unsupported init target %q"
	errorInitExistsFormat           = "configuration file already exists at %s"
	errorInitInspectFormat          = "inspect configuration path %s: %w"
	errorInitEncodeFormat           = "encode default configuration: %w"
	errorInitWriteFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	// HomeDirectory overrides os.UserHomeDir when set.
	HomeDirectory string
}

// DefaultApplicationConfiguration returns the built-in defaults written by init.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	defaultPaths := func() PathConfiguration {
		return PathConfiguration{
			UseGitignore:     boolPointer(true),
			UseIgnoreFile:    boolPointer(true),
			UseDefaultIgnore: boolPointer(true),
		}
	}
	commandDefaults := func(command string) CommandConfiguration {
		return CommandConfiguration{
			Output:     types.DefaultOutputFileNames[command],
			Extensions: []string{},
			Ignore:     []string{},
			Paths:      defaultPaths(),
			Clipboard:  boolPointer(false),
		}
	}
	return ApplicationConfiguration{
		Combine: CombineConfiguration{
			CommandConfiguration: commandDefaults(types.CommandCombine),
			Mode:                 types.ModeXML,
			AddLineNumbers:       boolPointer(false),
			Tokens: TokenConfiguration{
				Enabled: boolPointer(false),
				Model:   DefaultTokenModel,
			},
		},
		Tree: commandDefaults(types.CommandTree),
		List: commandDefaults(types.CommandList),
	}
}

// RenderDefaultConfiguration encodes DefaultApplicationConfiguration as YAML.
func RenderDefaultConfiguration() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentation)
	if encodeError := encoder.Encode(DefaultApplicationConfiguration()); encodeError != nil {
		return nil, fmt.Errorf(errorInitEncodeFormat, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, fmt.Errorf(errorInitEncodeFormat, closeError)
	}
	return buffer.Bytes(), nil
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorInitWorkingDirectoryFormat, err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.LocalConfigFileName)
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolvedHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf(errorInitHomeDirectoryFormat, err)
			}
			homeDirectory = resolvedHome
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf(errorInitCreateDirectoryFormat, configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf(errorInitUnsupportedTarget, target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(errorInitExistsFormat, destinationPath)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf(errorInitInspectFormat, destinationPath, err)
	}

	content, renderError := RenderDefaultConfiguration()
	if renderError != nil {
		return "", renderError
	}
	if err := os.WriteFile(destinationPath, content, 0o600); err != nil {
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, err)
	}
	return destinationPath, nil
}

func boolPointer(value bool) *bool {
	return &value
}
