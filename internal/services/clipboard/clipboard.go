// Package clipboard copies rendered artifacts to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const errorCopyFormat = "copy %d bytes to clipboard: %w"

// ErrUnsupported reports a platform without a usable clipboard utility.
var ErrUnsupported = errors.New("no clipboard utility available")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll func(text string) error
}

// NewService constructs a Service backed by the system clipboard. On platforms
// without a clipboard utility every Copy fails with ErrUnsupported.
func NewService() *Service {
	if clipboard.Unsupported {
		return &Service{writeAll: func(string) error { return ErrUnsupported }}
	}
	return &Service{writeAll: clipboard.WriteAll}
}

// NewServiceWithWriter constructs a Service that hands text to writeAll instead
// of the system clipboard.
func NewServiceWithWriter(writeAll func(text string) error) *Service {
	return &Service{writeAll: writeAll}
}

// Copy writes text to the clipboard.
func (service *Service) Copy(text string) error {
	writeAll := service.writeAll
	if writeAll == nil {
		writeAll = clipboard.WriteAll
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf(errorCopyFormat, len(text), err)
	}
	return nil
}

var _ Copier = (*Service)(nil)
