package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/fcom/internal/tokenizer"
	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

type fixedCounter struct {
	tokens int
}

func (counter fixedCounter) Name() string { return "fixed" }

func (counter fixedCounter) CountString(string) (int, error) { return counter.tokens, nil }

// prepareProject creates a small project in a temporary directory, makes it the
// working directory and isolates the home directory.
func prepareProject(testingHandle *testing.T) string {
	testingHandle.Helper()
	projectDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, projectDirectory, "a.txt", "hello\n")
	writeProjectFile(testingHandle, projectDirectory, "sub/b.go", "package b\n")
	writeProjectFile(testingHandle, projectDirectory, "node_modules/dep.js", "ignored\n")
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	previousDirectory, getwdErr := os.Getwd()
	require.NoError(testingHandle, getwdErr)
	require.NoError(testingHandle, os.Chdir(projectDirectory))
	testingHandle.Cleanup(func() { _ = os.Chdir(previousDirectory) })
	return projectDirectory
}

func writeProjectFile(testingHandle *testing.T, root string, relativePath string, content string) {
	testingHandle.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(testingHandle, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
	require.NoError(testingHandle, os.WriteFile(absolutePath, []byte(content), 0o644))
}

func executeCommand(testingHandle *testing.T, logger *zap.Logger, dependencies Dependencies, arguments ...string) (string, error) {
	testingHandle.Helper()
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = &recordingCopier{}
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = func(tokenizer.Config) (tokenizer.Counter, string, error) {
			return fixedCounter{tokens: 1}, "fixed", nil
		}
	}
	rootCommand := NewRootCommand(logger, dependencies)
	var outputBuffer bytes.Buffer
	rootCommand.SetOut(&outputBuffer)
	rootCommand.SetErr(&outputBuffer)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	executionError := rootCommand.Execute()
	return outputBuffer.String(), executionError
}

func TestMissingRootCreatesNoOutput(t *testing.T) {
	projectDirectory := prepareProject(t)

	for _, commandName := range []string{types.CommandCombine, types.CommandTree, types.CommandList} {
		_, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, commandName, "-o", "artifact.txt", "does-not-exist")
		require.ErrorIs(t, executionError, types.ErrInvalidRoot, commandName)
		require.NoFileExists(t, filepath.Join(projectDirectory, "artifact.txt"), commandName)
	}
}

func TestCombineWritesXMLAndExcludesDestination(t *testing.T) {
	projectDirectory := prepareProject(t)

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "combine", "-o", "combined.xml", ".")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, "All files have been processed and combined into 'combined.xml' using xml mode.")

	combined, readError := os.ReadFile(filepath.Join(projectDirectory, "combined.xml"))
	require.NoError(t, readError)
	require.Contains(t, string(combined), `<file path="a.txt"`)
	require.Contains(t, string(combined), `<file path="sub/b.go"`)
	require.NotContains(t, string(combined), "combined.xml")
	require.NotContains(t, string(combined), "dep.js")
	require.NoFileExists(t, filepath.Join(projectDirectory, "combined.xml.lock"))

	// A second run must not pick up the artifact from the first.
	_, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "combine", "-o", "combined.xml", ".")
	require.NoError(t, executionError)
	rerun, readError := os.ReadFile(filepath.Join(projectDirectory, "combined.xml"))
	require.NoError(t, readError)
	require.Equal(t, string(combined), string(rerun))
}

func TestTreeToStandardOutput(t *testing.T) {
	projectDirectory := prepareProject(t)

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "tree", "-o", "-")
	require.NoError(t, executionError)
	expected := filepath.Base(projectDirectory) + "/\n" +
		"├── sub/\n" +
		"│   └── b.go\n" +
		"└── a.txt\n"
	require.Equal(t, expected, commandOutput)
}

func TestTreeWithoutDefaultIgnore(t *testing.T) {
	prepareProject(t)

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "tree", "--no-default-ignore", "-o", "-", ".")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, "node_modules/")
	require.Contains(t, commandOutput, "dep.js")
}

func TestListFiltersByExtensionAndFolder(t *testing.T) {
	projectDirectory := prepareProject(t)
	writeProjectFile(t, projectDirectory, "vendor/c.go", "package c\n")

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "list", "-e", ".GO", "-i", "vendor", "-o", "-")
	require.NoError(t, executionError)
	require.Equal(t, "sub/b.go\n", commandOutput)
}

func TestListWritesDefaultDestination(t *testing.T) {
	projectDirectory := prepareProject(t)

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "list")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, "File list has been generated and saved to 'file_list.txt'.")

	listed, readError := os.ReadFile(filepath.Join(projectDirectory, "file_list.txt"))
	require.NoError(t, readError)
	require.Equal(t, "sub/b.go\na.txt\n", string(listed))
}

func TestGitignoreIsHonoredUnlessDisabled(t *testing.T) {
	projectDirectory := prepareProject(t)
	writeProjectFile(t, projectDirectory, ".gitignore", "*.txt\n")

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "list", "-o", "-")
	require.NoError(t, executionError)
	require.NotContains(t, commandOutput, "a.txt")

	commandOutput, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "list", "--no-gitignore", "-o", "-")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, "a.txt")
}

func TestConfigurationSuppliesDefaultsAndFlagsOverride(t *testing.T) {
	projectDirectory := prepareProject(t)
	writeProjectFile(t, projectDirectory, utils.LocalConfigFileName, "combine:\n  mode: markdown\n  output: \"-\"\n  extensions: [go]\n")

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "combine")
	require.NoError(t, executionError)
	require.True(t, strings.HasPrefix(commandOutput, "# File Overview"), commandOutput)
	require.Contains(t, commandOutput, "### sub/b.go")
	require.NotContains(t, commandOutput, "a.txt")

	commandOutput, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "combine", "--mode", "xml", "-e", "txt")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, `<file path="a.txt"`)
	require.NotContains(t, commandOutput, "sub/b.go")
}

func TestExplicitConfigurationFile(t *testing.T) {
	projectDirectory := prepareProject(t)
	writeProjectFile(t, projectDirectory, "settings/custom.yaml", "list:\n  output: \"-\"\n  ignore: [sub]\n")

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "--config", "settings/custom.yaml", "list")
	require.NoError(t, executionError)
	require.Equal(t, "settings/custom.yaml\na.txt\n", commandOutput)
}

func TestCombineCopiesToClipboard(t *testing.T) {
	prepareProject(t)
	copier := &recordingCopier{}

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{Clipboard: copier}, "combine", "--mode", "markdown", "--copy", "-o", "-")
	require.NoError(t, executionError)
	require.Len(t, copier.copied, 1)
	require.Equal(t, commandOutput, copier.copied[0])
}

func TestClipboardFailureOnlyWarns(t *testing.T) {
	prepareProject(t)
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	copier := &recordingCopier{err: errors.New("no clipboard")}

	_, executionError := executeCommand(t, zap.New(observedCore), Dependencies{Clipboard: copier}, "list", "--copy", "yes", "-o", "-")
	require.NoError(t, executionError)
	require.Equal(t, 1, observedLogs.FilterMessage(warningClipboardMessage).Len())
}

func TestCombineLogsTokenCount(t *testing.T) {
	prepareProject(t)
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	var requestedModel string
	dependencies := Dependencies{
		NewCounter: func(config tokenizer.Config) (tokenizer.Counter, string, error) {
			requestedModel = config.Model
			return fixedCounter{tokens: 42}, config.Model, nil
		},
	}

	_, executionError := executeCommand(t, zap.New(observedCore), dependencies, "combine", "--tokens", "--model", "gpt-4", "-o", "-")
	require.NoError(t, executionError)
	require.Equal(t, "gpt-4", requestedModel)
	tokenLogs := observedLogs.FilterMessage(infoTokenCountMessage).All()
	require.Len(t, tokenLogs, 1)
	require.Equal(t, int64(42), tokenLogs[0].ContextMap()["tokens"])
}

func TestCombineRejectsUnknownMode(t *testing.T) {
	projectDirectory := prepareProject(t)

	_, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "combine", "--mode", "xlm", "-o", "out.txt")
	require.ErrorIs(t, executionError, types.ErrUnknownMode)
	require.Contains(t, executionError.Error(), "xml")
	require.NoFileExists(t, filepath.Join(projectDirectory, "out.txt"))
}

func TestCustomModeRequiresTemplates(t *testing.T) {
	projectDirectory := prepareProject(t)

	_, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "combine", "--mode", "custom", "-o", "out.txt")
	require.ErrorIs(t, executionError, types.ErrMissingTemplates)
	require.NoFileExists(t, filepath.Join(projectDirectory, "out.txt"))
}

func TestCustomModeRendersTemplates(t *testing.T) {
	projectDirectory := prepareProject(t)
	templateDirectory := t.TempDir()
	outputTemplatePath := filepath.Join(templateDirectory, "output.tmpl")
	fileTemplatePath := filepath.Join(templateDirectory, "file.tmpl")
	require.NoError(t, os.WriteFile(outputTemplatePath, []byte("total={total_files}\n{files}"), 0o644))
	require.NoError(t, os.WriteFile(fileTemplatePath, []byte("[{path}:{lines}]{content}"), 0o644))

	_, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "combine",
		"--mode", "custom",
		"--custom-output-template", outputTemplatePath,
		"--custom-file-template", fileTemplatePath,
		"-o", "custom.txt")
	require.NoError(t, executionError)

	rendered, readError := os.ReadFile(filepath.Join(projectDirectory, "custom.txt"))
	require.NoError(t, readError)
	require.Equal(t, "total=2\n[sub/b.go:1]package b\n[a.txt:1]hello\n", string(rendered))
}

func TestInitWritesConfigurationOnce(t *testing.T) {
	projectDirectory := prepareProject(t)

	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "init")
	require.NoError(t, executionError)
	require.Contains(t, commandOutput, utils.LocalConfigFileName)
	require.FileExists(t, filepath.Join(projectDirectory, utils.LocalConfigFileName))

	_, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "init")
	require.Error(t, executionError)

	_, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "init", "--force")
	require.NoError(t, executionError)

	// The generated file must load back and keep the defaults working.
	_, executionError = executeCommand(t, zap.NewNop(), Dependencies{}, "list", "-o", "-")
	require.NoError(t, executionError)
}

func TestInitGlobalWritesUnderHome(t *testing.T) {
	prepareProject(t)
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)

	_, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "init", "--global")
	require.NoError(t, executionError)
	require.FileExists(t, filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName))
}

func TestVersionFlag(t *testing.T) {
	commandOutput, executionError := executeCommand(t, zap.NewNop(), Dependencies{}, "--version")
	require.NoError(t, executionError)
	require.True(t, strings.HasPrefix(commandOutput, "fcom version: "), commandOutput)
}
