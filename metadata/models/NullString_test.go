package models_test

import (
	"encoding/json"
	"testing"

	"github.com/deciphernow/contact-registry-server/metadata/models"
)

func TestNullString(t *testing.T) {

	type test struct {
		Name models.NullString
		Age  int
	}

	jsonData := `{ "Name": null, "Age": 40 }`
	b := []byte(jsonData)

	var obj1 test
	err := json.Unmarshal(b, &obj1)
	if err != nil {
		t.Fail()
	}
	if obj1.Name.Valid != false {
		t.Errorf("Expected valid to be false. Got: %v\n", obj1.Name.Valid)
	}
	if v, _ := obj1.Name.Value(); v != nil {
		t.Errorf("Expected Value() to return nil for field Name when given: %s\n", jsonData)
	}

	jsonData = `{ "Name": "Smith", "Age": 40 }`
	var obj2 test
	err = json.Unmarshal([]byte(jsonData), &obj2)
	if err != nil {
		t.Fail()
	}
	if !obj2.Name.Valid || obj2.Name.String != "Smith" {
		t.Errorf("Expected a valid populated Name. Got: %v\n", obj2.Name)
	}

	roundtrip, err := json.Marshal(obj1)
	if err != nil {
		t.Fail()
	}
	if string(roundtrip) != `{"Name":null,"Age":40}` {
		t.Errorf("Expected null Name in marshaled output. Got: %s\n", roundtrip)
	}
}
