package events_test

import (
	"encoding/json"
	"testing"

	"github.com/deciphernow/contact-registry-server/events"
)

func TestGEMYield(t *testing.T) {
	gem := events.GEM{
		ID:            "c0ffee",
		SchemaVersion: "1.0",
		EventType:     "contact-registry-event",
		Action:        "list",
		Timestamp:     1718000000,
		Payload: events.Payload{
			SessionID:  "abc123",
			StatusCode: 200,
			Resource:   "/services/contact-registry/1.0/contacts",
		},
	}

	raw := gem.Yield()
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("yielded bytes are not valid json: %v", err)
	}
	if decoded["eventId"] != "c0ffee" {
		t.Errorf("expected eventId c0ffee, got %v", decoded["eventId"])
	}
	if decoded["action"] != "list" {
		t.Errorf("expected action list, got %v", decoded["action"])
	}
	payload, ok := decoded["payload"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a payload object, got %v", decoded["payload"])
	}
	if payload["sessionId"] != "abc123" {
		t.Errorf("expected sessionId abc123, got %v", payload["sessionId"])
	}
}

func TestGEMIsSuccessful(t *testing.T) {
	cases := []struct {
		statusCode int
		successful bool
	}{
		{200, true},
		{304, true},
		{400, false},
		{404, false},
		{499, false},
		{504, false},
		{0, false},
	}
	for _, c := range cases {
		gem := events.GEM{Payload: events.Payload{StatusCode: c.statusCode}}
		if gem.IsSuccessful() != c.successful {
			t.Errorf("status %d: expected successful=%v", c.statusCode, c.successful)
		}
	}
}

func TestGEMEventAction(t *testing.T) {
	gem := events.GEM{Action: "search"}
	if gem.EventAction() != "search" {
		t.Errorf("expected search, got %s", gem.EventAction())
	}
}
