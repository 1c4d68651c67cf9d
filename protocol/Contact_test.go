package protocol_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/deciphernow/contact-registry-server/protocol"
)

func TestContactMarshalsAbsentPartsAsNull(t *testing.T) {
	created, _ := time.Parse(time.RFC3339, "2024-03-01T10:00:00Z")
	contact := protocol.Contact{
		ID:          12,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		CustomerID:  "CUST-0123456789AB",
		Created:     created,
		LastUpdated: created,
	}
	raw, err := json.Marshal(contact)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	s := string(raw)
	for _, field := range []string{"gender", "phoneNumber", "birthday", "addressId", "street", "relationshipId", "points"} {
		if !strings.Contains(s, `"`+field+`":null`) {
			t.Errorf("expected %s to render as null in %s", field, s)
		}
	}
	if !strings.Contains(s, `"customerId":"CUST-0123456789AB"`) {
		t.Errorf("expected customerId to render, got %s", s)
	}
}
