package utils

import (
	"net/http"
)

// UnknownMimeType is returned when no data is available for detection.
const UnknownMimeType = ""

// DetectMimeType returns the MIME type of already loaded file data.
// Only the first sniffLength bytes are inspected.
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return UnknownMimeType
	}
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}
