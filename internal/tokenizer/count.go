package tokenizer

import (
	"errors"

	"github.com/temirov/fcom/internal/utils"
)

var errNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for the provided data using counter. Binary data is not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
