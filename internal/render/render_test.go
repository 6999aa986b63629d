package render_test

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/fcom/internal/filter"
	"github.com/temirov/fcom/internal/render"
	"github.com/temirov/fcom/internal/types"
	"github.com/temirov/fcom/internal/walker"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
}

func newContext(t *testing.T, files map[string]string) render.Context {
	t.Helper()
	root := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeFiles(t, root, files)
	entries, walkError := walker.Walk(root, filter.New(filter.Config{IgnoredFolderNames: types.DefaultIgnoredFolderNames}), nil)
	require.NoError(t, walkError)
	return render.Context{
		Root:    root,
		Entries: entries,
		Logger:  zap.NewNop(),
		Now:     func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local) },
	}
}

func TestCombineCustomConcatenatesWithoutDelimiter(t *testing.T) {
	renderContext := newContext(t, map[string]string{"a.txt": "hi", "b.txt": "bye"})
	renderContext.Options.Templates = &render.TemplatePair{
		Output: "HEADER\n{files}\nFOOTER",
		File:   "### {path}\n{content}",
	}

	result, err := render.Combine(renderContext, types.ModeCustom)
	require.NoError(t, err)
	require.Equal(t, "HEADER\n### a.txt\nhi### b.txt\nbye\nFOOTER", result.Output)
	require.Equal(t, 2, result.Files)
	require.Equal(t, int64(5), result.Bytes)
}

func TestCombineCustomSubstitutesInSinglePass(t *testing.T) {
	renderContext := newContext(t, map[string]string{"a.txt": "{files} {path} {unknown}"})
	renderContext.Options.Templates = &render.TemplatePair{
		Output: "{root}|{total_files}|{date}|{files}|{missing}",
		File:   "[{name}:{lines}:{content}]",
	}

	result, err := render.Combine(renderContext, types.ModeCustom)
	require.NoError(t, err)
	require.Equal(t, "project|1|2024-05-01 12:00:00|[a.txt:1:{files} {path} {unknown}]|{missing}", result.Output)
}

func TestCombineCustomTreeAndFileListPlaceholders(t *testing.T) {
	renderContext := newContext(t, map[string]string{"sub/f.txt": "x"})
	renderContext.Options.Templates = &render.TemplatePair{
		Output: "{tree}\n--\n{file_list}\n--\n{files}",
		File:   "{content}",
	}

	result, err := render.Combine(renderContext, types.ModeCustom)
	require.NoError(t, err)
	require.Equal(t, "project/\n└── sub/\n    └── f.txt\n--\nsub/f.txt\n--\nx", result.Output)
}

func TestCombineCustomTemplateValidation(t *testing.T) {
	renderContext := newContext(t, map[string]string{"a.txt": "hi"})

	_, err := render.Combine(renderContext, types.ModeCustom)
	require.ErrorIs(t, err, types.ErrMissingTemplates)

	renderContext.Options.Templates = &render.TemplatePair{Output: "no placeholder", File: "{content}"}
	_, err = render.Combine(renderContext, types.ModeCustom)
	require.ErrorIs(t, err, types.ErrMalformedTemplate)

	core, recorded := observer.New(zapcore.WarnLevel)
	renderContext.Logger = zap.New(core)
	renderContext.Options.Templates = &render.TemplatePair{Output: "{files}", File: "{path};"}
	result, err := render.Combine(renderContext, types.ModeCustom)
	require.NoError(t, err)
	require.Equal(t, "a.txt;", result.Output)
	require.Equal(t, 1, recorded.Len())
}

func TestLoadTemplatePair(t *testing.T) {
	directory := t.TempDir()
	outputTemplatePath := filepath.Join(directory, "output.tmpl")
	fileTemplatePath := filepath.Join(directory, "file.tmpl")
	require.NoError(t, os.WriteFile(outputTemplatePath, []byte("<{files}>"), 0o644))
	require.NoError(t, os.WriteFile(fileTemplatePath, []byte("{content}"), 0o644))

	pair, err := render.LoadTemplatePair(outputTemplatePath, fileTemplatePath)
	require.NoError(t, err)
	require.Equal(t, "<{files}>", pair.Output)
	require.Equal(t, "{content}", pair.File)

	_, err = render.LoadTemplatePair(outputTemplatePath, "")
	require.ErrorIs(t, err, types.ErrMissingTemplates)

	_, err = render.LoadTemplatePair(outputTemplatePath, filepath.Join(directory, "missing.tmpl"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

type parsedCombined struct {
	XMLName xml.Name `xml:"combined"`
	Root    string   `xml:"root,attr"`
	Count   int      `xml:"files,attr"`
	Tree    string   `xml:"tree"`
	Files   []struct {
		Path    string `xml:"path,attr"`
		Lines   int    `xml:"lines,attr"`
		Content string `xml:",chardata"`
	} `xml:"file"`
}

func TestCombineXMLRoundTrips(t *testing.T) {
	files := map[string]string{
		"a.txt":            "if a < b && c > d {\n\treturn \"x\"\n}\n",
		"dir/b.md":         "]]> <![CDATA[ '\"' \r\nend",
		"dir/name&amp.txt": "",
	}
	renderContext := newContext(t, files)

	result, err := render.Combine(renderContext, types.ModeXML)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Output, xml.Header))

	var parsed parsedCombined
	require.NoError(t, xml.Unmarshal([]byte(result.Output), &parsed))
	require.Equal(t, "project", parsed.Root)
	require.Equal(t, 3, parsed.Count)
	require.Contains(t, parsed.Tree, "name&amp.txt")

	recovered := map[string]string{}
	for _, file := range parsed.Files {
		recovered[file.Path] = file.Content
	}
	require.Equal(t, files, recovered)
	require.Equal(t, "dir/b.md", parsed.Files[0].Path)
	require.Equal(t, 2, parsed.Files[0].Lines)
}

func TestCombineXMLReplacesIllegalCharacters(t *testing.T) {
	renderContext := newContext(t, map[string]string{"ctl.txt": "a\x01b"})

	result, err := render.Combine(renderContext, "XML")
	require.NoError(t, err)

	var parsed parsedCombined
	require.NoError(t, xml.Unmarshal([]byte(result.Output), &parsed))
	require.Equal(t, "a\uFFFDb", parsed.Files[0].Content)
}

func TestCombineMarkdownHasOneFencePerFile(t *testing.T) {
	files := map[string]string{
		"README.md":   "# Title\n\n```go\nfmt.Println()\n```\n",
		"main.go":     "package main\n",
		"empty.txt":   "",
		"tick.txt":    "a ```` b",
		"sub/x.yaml":  "key: value",
		"sub/y.proto": "syntax = \"proto3\";\n\n\n",
	}
	renderContext := newContext(t, files)

	result, err := render.Combine(renderContext, types.ModeMarkdown)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Output, "# File Overview\n"))
	require.Contains(t, result.Output, "### sub/x.yaml\n\n```yaml\nkey: value\n```\n")
	require.Contains(t, result.Output, "`````txt\na ```` b\n`````\n")

	source := []byte(result.Output)
	document := goldmark.New().Parser().Parse(text.NewReader(source))
	fencedBlocks := 0
	walkError := ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, isFenced := node.(*ast.FencedCodeBlock); isFenced && entering {
			fencedBlocks++
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, walkError)
	require.Equal(t, len(files), fencedBlocks)
}

func TestCombineAddsLineNumbers(t *testing.T) {
	content := strings.Repeat("line\n", 11)
	renderContext := newContext(t, map[string]string{"a.txt": content})
	renderContext.Options.AddLineNumbers = true
	renderContext.Options.Templates = &render.TemplatePair{Output: "{files}", File: "{content}"}

	result, err := render.Combine(renderContext, types.ModeCustom)
	require.NoError(t, err)
	numberedLines := strings.Split(strings.TrimSuffix(result.Output, "\n"), "\n")
	require.Len(t, numberedLines, 11)
	require.Equal(t, " 1: line", numberedLines[0])
	require.Equal(t, "11: line", numberedLines[10])
}

func TestCombineSkipsBinaryAndUnreadableFiles(t *testing.T) {
	renderContext := newContext(t, map[string]string{
		"a.txt":   "text",
		"b.bin":   "\x00\x01\x02",
		"c.txt":   "gone",
		"d.latin": "caf\xe9",
	})
	readFile := os.ReadFile
	renderContext.ReadFile = func(path string) ([]byte, error) {
		if filepath.Base(path) == "c.txt" {
			return nil, errors.New("permission denied")
		}
		return readFile(path)
	}
	core, recorded := observer.New(zapcore.WarnLevel)
	renderContext.Logger = zap.New(core)

	result, err := render.Combine(renderContext, types.ModeXML)
	require.NoError(t, err)
	require.Equal(t, 1, result.Files)
	require.Equal(t, []string{"b.bin", "c.txt", "d.latin"}, result.Skipped)
	require.Equal(t, 3, recorded.Len())
	require.Contains(t, result.Output, "<file path=\"a.txt\" lines=\"1\">text</file>")
}

func TestCombineUnknownModeSuggests(t *testing.T) {
	renderContext := newContext(t, map[string]string{"a.txt": "hi"})

	_, err := render.Combine(renderContext, "markdwn")
	require.ErrorIs(t, err, types.ErrUnknownMode)
	require.Contains(t, err.Error(), "did you mean \"markdown\"")

	_, err = render.Combine(renderContext, "spreadsheet")
	require.ErrorIs(t, err, types.ErrUnknownMode)
	require.NotContains(t, err.Error(), "did you mean")
}

func TestNumberLines(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "single line without newline", input: "a", expected: "1: a"},
		{name: "trailing newline kept", input: "a\nb\n", expected: "1: a\n2: b\n"},
		{name: "blank lines numbered", input: "\n\n", expected: "1: \n2: \n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, render.NumberLines(testCase.input))
			require.Equal(t, render.CountLines(testCase.input), render.CountLines(render.NumberLines(testCase.input)))
		})
	}
}

func TestTreeRendersDepth(t *testing.T) {
	renderContext := newContext(t, map[string]string{"sub/f.txt": "f"})

	require.Equal(t, "project/\n└── sub/\n    └── f.txt\n", render.Tree(renderContext))
}

func TestTreeConnectors(t *testing.T) {
	renderContext := newContext(t, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
		"z.txt":     "z",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(renderContext.Root, "empty"), 0o755))
	entries, err := walker.Walk(renderContext.Root, nil, nil)
	require.NoError(t, err)
	renderContext.Entries = entries

	expected := strings.Join([]string{
		"project/",
		"├── a/",
		"│   ├── b/",
		"│   │   └── y.txt",
		"│   └── x.txt",
		"├── empty/",
		"└── z.txt",
		"",
	}, "\n")
	require.Equal(t, expected, render.Tree(renderContext))
}

func TestListRendersFilesOnly(t *testing.T) {
	renderContext := newContext(t, map[string]string{
		"b.txt":     "b",
		"sub/a.txt": "a",
	})

	require.Equal(t, "sub/a.txt\nb.txt\n", render.List(renderContext))
	require.Equal(t, "", render.List(render.Context{}))
}

func TestSuggestMode(t *testing.T) {
	require.Equal(t, "xml", render.SuggestMode("xm"))
	require.Equal(t, "custom", render.SuggestMode("custon"))
	require.Equal(t, "", render.SuggestMode("completely-different"))
}
