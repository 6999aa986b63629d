package render

import "strings"

// List renders one relative file path per line in traversal order. Directories are omitted.
func List(renderContext Context) string {
	var builder strings.Builder
	for _, file := range renderContext.files() {
		builder.WriteString(file.Path)
		builder.WriteString(lineBreak)
	}
	return builder.String()
}
