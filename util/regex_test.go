package util

import (
	"regexp"
	"testing"
)

func TestGetRegexCaptureGroups(t *testing.T) {

	pattern := "/contacts/(?P<contactId>[0-9]+)"
	s := "/services/contact-registry/1.0/contacts/42"
	re := regexp.MustCompile(pattern)
	result := GetRegexCaptureGroups(s, re)

	if result["contactId"] != "42" {
		t.Fail()
	}

	if item := result["foo"]; item == "" {
		t.Log("Foo not found in map.")
	}
}
