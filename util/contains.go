package util

import "strings"

// ContainsAny reports whether msg contains any of the given fragments.
func ContainsAny(msg string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first fragment contained in msg, or the empty
// string when none match.
func FirstMatch(msg string, fragments []string) string {
	for _, fragment := range fragments {
		if strings.Contains(msg, fragment) {
			return fragment
		}
	}
	return ""
}
