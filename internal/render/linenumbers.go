package render

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	lineBreak           = "\n"
	lineNumberSeparator = ": "
)

// CountLines returns the number of lines in content. A trailing newline does
// not start a new line and empty content has no lines.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, lineBreak), lineBreak) + 1
}

// NumberLines prefixes every line with its 1-based number, right-aligned to the
// widest number, followed by ": ". The line count and a trailing newline are preserved.
func NumberLines(content string) string {
	lineCount := CountLines(content)
	if lineCount == 0 {
		return content
	}
	hasTrailingNewline := strings.HasSuffix(content, lineBreak)
	lines := strings.Split(strings.TrimSuffix(content, lineBreak), lineBreak)
	width := len(strconv.Itoa(lineCount))

	var builder strings.Builder
	builder.Grow(len(content) + lineCount*(width+len(lineNumberSeparator)+1))
	for lineIndex, line := range lines {
		if lineIndex > 0 {
			builder.WriteString(lineBreak)
		}
		fmt.Fprintf(&builder, "%*d%s%s", width, lineIndex+1, lineNumberSeparator, line)
	}
	if hasTrailingNewline {
		builder.WriteString(lineBreak)
	}
	return builder.String()
}
