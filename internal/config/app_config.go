package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/fcom/internal/utils"
)

const (
	errorWorkingDirectoryFormat  = "determine working directory: %w"
	errorResolveConfigFormat     = "resolve configuration path %s: %w"
	errorStatConfigFormat        = "stat configuration %s: %w"
	errorConfigIsDirectoryFormat = "configuration path %s is a directory"
	errorReadConfigFormat        = "read configuration from %s: %w"
	errorDecodeConfigFormat      = "decode configuration from %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides os.UserHomeDir when set.
	HomeDirectory string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Combine CombineConfiguration `mapstructure:"combine" yaml:"combine"`
	Tree    CommandConfiguration `mapstructure:"tree" yaml:"tree"`
	List    CommandConfiguration `mapstructure:"list" yaml:"list"`
}

// CommandConfiguration defines options shared by every walking command.
type CommandConfiguration struct {
	Output     string            `mapstructure:"output" yaml:"output,omitempty"`
	Extensions []string          `mapstructure:"extensions" yaml:"extensions"`
	Ignore     []string          `mapstructure:"ignore" yaml:"ignore"`
	Paths      PathConfiguration `mapstructure:"paths" yaml:"paths"`
	Clipboard  *bool             `mapstructure:"copy" yaml:"copy,omitempty"`
}

// CombineConfiguration adds the combine-only options.
type CombineConfiguration struct {
	CommandConfiguration `mapstructure:",squash" yaml:",inline"`

	Mode           string             `mapstructure:"mode" yaml:"mode,omitempty"`
	AddLineNumbers *bool              `mapstructure:"add_line_numbers" yaml:"add_line_numbers,omitempty"`
	OutputTemplate string             `mapstructure:"custom_output_template" yaml:"custom_output_template,omitempty"`
	FileTemplate   string             `mapstructure:"custom_file_template" yaml:"custom_file_template,omitempty"`
	Tokens         TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// PathConfiguration configures which ignore sources apply during traversal.
type PathConfiguration struct {
	UseGitignore     *bool `mapstructure:"use_gitignore" yaml:"use_gitignore,omitempty"`
	UseIgnoreFile    *bool `mapstructure:"use_ignore" yaml:"use_ignore,omitempty"`
	UseDefaultIgnore *bool `mapstructure:"use_default_ignore" yaml:"use_default_ignore,omitempty"`
}

// LoadApplicationConfiguration loads configuration from the global file and then
// the local (or explicit) file, the latter taking precedence. Missing files are
// not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, homeErr := os.UserHomeDir(); homeErr == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	return merged.Merge(localConfig), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf(errorResolveConfigFormat, explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfigFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigIsDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Combine = result.Combine.merge(override.Combine)
	result.Tree = result.Tree.merge(override.Tree)
	result.List = result.List.merge(override.List)
	return result
}

func (config CommandConfiguration) merge(override CommandConfiguration) CommandConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, utils.DeduplicatePatterns(override.Extensions)...)
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, utils.DeduplicatePatterns(override.Ignore)...)
	}
	result.Paths = result.Paths.merge(override.Paths)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config CombineConfiguration) merge(override CombineConfiguration) CombineConfiguration {
	result := config
	result.CommandConfiguration = result.CommandConfiguration.merge(override.CommandConfiguration)
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.AddLineNumbers != nil {
		result.AddLineNumbers = cloneBool(override.AddLineNumbers)
	}
	if override.OutputTemplate != "" {
		result.OutputTemplate = override.OutputTemplate
	}
	if override.FileTemplate != "" {
		result.FileTemplate = override.FileTemplate
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.UseDefaultIgnore != nil {
		result.UseDefaultIgnore = cloneBool(override.UseDefaultIgnore)
	}
	return result
}

// BoolValue dereferences value, falling back when it is unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
