package render

import (
	"path"
	"strconv"
	"strings"
)

const (
	markdownTitle          = "# File Overview\n\n"
	markdownRootPrefix     = "- **Root:** "
	markdownTotalPrefix    = "- **Total files:** "
	markdownFileHeading    = "### "
	markdownFenceCharacter = "`"
	minimumFenceLength     = 3
)

func renderMarkdown(renderContext Context, files []loadedFile) string {
	var builder strings.Builder
	builder.WriteString(markdownTitle)
	builder.WriteString(markdownRootPrefix)
	builder.WriteString(renderContext.rootName())
	builder.WriteString(lineBreak)
	builder.WriteString(markdownTotalPrefix)
	builder.WriteString(strconv.Itoa(len(files)))
	builder.WriteString(lineBreak)

	for _, file := range files {
		fence := strings.Repeat(markdownFenceCharacter, fenceLength(file.content))
		builder.WriteString(lineBreak)
		builder.WriteString(markdownFileHeading)
		builder.WriteString(file.entry.Path)
		builder.WriteString(lineBreak)
		builder.WriteString(lineBreak)
		builder.WriteString(fence)
		builder.WriteString(infoString(file.entry.Name()))
		builder.WriteString(lineBreak)
		builder.WriteString(file.content)
		if file.content != "" && !strings.HasSuffix(file.content, lineBreak) {
			builder.WriteString(lineBreak)
		}
		builder.WriteString(fence)
		builder.WriteString(lineBreak)
	}
	return builder.String()
}

// fenceLength returns a backtick fence length longer than any backtick run in content.
func fenceLength(content string) int {
	longestRun := 0
	currentRun := 0
	for index := 0; index < len(content); index++ {
		if content[index] == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	if longestRun+1 > minimumFenceLength {
		return longestRun + 1
	}
	return minimumFenceLength
}

// infoString derives the fenced block language from the file extension.
// Backticks are dropped because a backtick fence info string cannot contain them.
func infoString(fileName string) string {
	extension := strings.TrimPrefix(path.Ext(fileName), ".")
	return strings.ToLower(strings.ReplaceAll(extension, markdownFenceCharacter, ""))
}
