// Package render turns walked entries into the combine, tree and list artifacts.
package render

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/fcom/internal/types"
)

// Options holds renderer switches.
type Options struct {
	// AddLineNumbers prefixes every content line with its 1-based number in combine output.
	AddLineNumbers bool
	// Templates is required by the custom combine mode and ignored otherwise.
	Templates *TemplatePair
}

// Context carries everything a renderer needs for one invocation.
type Context struct {
	// Root is the absolute walk root.
	Root    string
	Entries []types.FileEntry
	Options Options
	Logger  *zap.Logger
	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
	// Now defaults to time.Now and only feeds the {date} placeholder.
	Now func() time.Time
}

func (renderContext Context) logger() *zap.Logger {
	if renderContext.Logger == nil {
		return zap.NewNop()
	}
	return renderContext.Logger
}

func (renderContext Context) readFile(path string) ([]byte, error) {
	if renderContext.ReadFile == nil {
		return os.ReadFile(path)
	}
	return renderContext.ReadFile(path)
}

func (renderContext Context) now() time.Time {
	if renderContext.Now == nil {
		return time.Now()
	}
	return renderContext.Now()
}

// rootName returns the display name of the root directory.
func (renderContext Context) rootName() string {
	if renderContext.Root == "" {
		return "."
	}
	return filepath.Base(renderContext.Root)
}

// files returns the file entries in traversal order.
func (renderContext Context) files() []types.FileEntry {
	files := make([]types.FileEntry, 0, len(renderContext.Entries))
	for _, entry := range renderContext.Entries {
		if !entry.IsDirectory {
			files = append(files, entry)
		}
	}
	return files
}
