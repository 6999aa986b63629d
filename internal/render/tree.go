package render

import (
	"strings"
)

const (
	treeBranchConnector   = "├── "
	treeLastConnector     = "└── "
	treeContinuationGuide = "│   "
	treeEmptyGuide        = "    "
	directorySuffix       = "/"
)

// Tree draws the context entries as an indented tree. The first line is the
// root name; every entry follows on its own line with box-drawing connectors.
// Directories carry a trailing slash and are drawn even when empty.
func Tree(renderContext Context) string {
	entries := renderContext.Entries
	lastAtDepth := lastSiblingFlags(renderContext)

	var builder strings.Builder
	rootLabel := renderContext.rootName()
	if !strings.HasSuffix(rootLabel, directorySuffix) {
		rootLabel += directorySuffix
	}
	builder.WriteString(rootLabel)
	builder.WriteString(lineBreak)

	// ancestorIsLast[d] records whether the open ancestor at depth d was the last of its siblings.
	ancestorIsLast := make([]bool, 0, 8)
	for entryIndex, entry := range entries {
		if entry.Depth < 1 {
			continue
		}
		if len(ancestorIsLast) >= entry.Depth {
			ancestorIsLast = ancestorIsLast[:entry.Depth-1]
		}
		for len(ancestorIsLast) < entry.Depth-1 {
			ancestorIsLast = append(ancestorIsLast, false)
		}
		for _, isLast := range ancestorIsLast {
			if isLast {
				builder.WriteString(treeEmptyGuide)
			} else {
				builder.WriteString(treeContinuationGuide)
			}
		}
		if lastAtDepth[entryIndex] {
			builder.WriteString(treeLastConnector)
		} else {
			builder.WriteString(treeBranchConnector)
		}
		builder.WriteString(entry.Name())
		if entry.IsDirectory {
			builder.WriteString(directorySuffix)
		}
		builder.WriteString(lineBreak)
		ancestorIsLast = append(ancestorIsLast, lastAtDepth[entryIndex])
	}
	return builder.String()
}

// lastSiblingFlags marks, for each entry, whether no later sibling follows it.
// A backwards pass sees each sibling group from its end first.
func lastSiblingFlags(renderContext Context) []bool {
	entries := renderContext.Entries
	flags := make([]bool, len(entries))
	siblingSeen := map[int]bool{}
	for entryIndex := len(entries) - 1; entryIndex >= 0; entryIndex-- {
		depth := entries[entryIndex].Depth
		flags[entryIndex] = !siblingSeen[depth]
		siblingSeen[depth] = true
		for deeperDepth := range siblingSeen {
			if deeperDepth > depth {
				delete(siblingSeen, deeperDepth)
			}
		}
	}
	return flags
}
