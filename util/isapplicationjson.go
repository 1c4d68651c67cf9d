package util

import "strings"

// IsApplicationJSON reports whether a Content-Type header value denotes
// application/json, ignoring any media type parameters such as charset.
func IsApplicationJSON(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return mediaType == "application/json"
}
