package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

var errNilEncoding = errors.New("nil tiktoken encoding")

// openAICounter counts tokens with a tiktoken BPE encoding. Special tokens are
// treated as plain text so arbitrary source files never fail to encode.
type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
