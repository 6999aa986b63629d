package utils

import (
	"unicode/utf8"
)

// sniffLength defines the maximum number of bytes read when detecting content types.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Invalid UTF-8 or any NUL byte marks the data as binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}
