package render

import (
	"encoding/xml"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	xmlRootClose = "</combined>\n"
	xmlTreeOpen  = "  <tree>"
	xmlTreeClose = "</tree>\n"
	xmlFileClose = "</file>\n"

	replacementRune = '\uFFFD'
)

func renderXML(renderContext Context, files []loadedFile) string {
	var builder strings.Builder
	builder.WriteString(xml.Header)
	builder.WriteString("<combined root=\"")
	writeXMLAttribute(&builder, renderContext.rootName())
	builder.WriteString("\" files=\"")
	builder.WriteString(strconv.Itoa(len(files)))
	builder.WriteString("\">\n")

	builder.WriteString(xmlTreeOpen)
	writeXMLText(&builder, Tree(renderContext))
	builder.WriteString(xmlTreeClose)

	for _, file := range files {
		builder.WriteString("  <file path=\"")
		writeXMLAttribute(&builder, file.entry.Path)
		builder.WriteString("\" lines=\"")
		builder.WriteString(strconv.Itoa(file.lines))
		builder.WriteString("\">")
		writeXMLText(&builder, file.content)
		builder.WriteString(xmlFileClose)
	}
	builder.WriteString(xmlRootClose)
	return builder.String()
}

// writeXMLAttribute escapes every character an attribute value cannot carry verbatim.
func writeXMLAttribute(builder *strings.Builder, value string) {
	_ = xml.EscapeText(builder, []byte(value))
}

// writeXMLText escapes markup characters but keeps tabs and newlines readable.
// Carriage returns are written as references so parsers do not normalize them
// away, and runes XML cannot represent become U+FFFD.
func writeXMLText(builder *strings.Builder, value string) {
	for _, character := range value {
		switch character {
		case '&':
			builder.WriteString("&amp;")
		case '<':
			builder.WriteString("&lt;")
		case '>':
			builder.WriteString("&gt;")
		case '\r':
			builder.WriteString("&#xD;")
		default:
			if character == utf8.RuneError || !isXMLCharacter(character) {
				builder.WriteRune(replacementRune)
				continue
			}
			builder.WriteRune(character)
		}
	}
}

func isXMLCharacter(character rune) bool {
	return character == '\t' || character == '\n' || character == '\r' ||
		(character >= 0x20 && character <= 0xD7FF) ||
		(character >= 0xE000 && character <= 0xFFFD) ||
		(character >= 0x10000 && character <= utf8.MaxRune)
}
