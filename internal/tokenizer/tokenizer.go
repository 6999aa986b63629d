// Package tokenizer estimates how many model tokens a rendered artifact consumes.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorDefaultEncodingFormat = "initialize default tokenizer: %w"
)

// NewCounter returns a Counter for the requested model together with the name
// of the model or encoding that will actually be used. Models tiktoken does not
// know fall back to the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	encoding, err := tiktoken.EncodingForModel(lowerModel)
	if err == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: lowerModel}, model, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf(errorDefaultEncodingFormat, fallbackErr)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}
