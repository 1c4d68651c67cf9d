package models

import (
	"database/sql"
	"encoding/json"
)

// NullString supports setting a null value for a string datatype from a database
type NullString struct {
	sql.NullString
}

// ToNullString wraps a string as a valid NullString
func ToNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: true}}
}

// MarshalJSON will return the jsonified expression of NullString if considered
// valid or nil otherwise
func (r NullString) MarshalJSON() ([]byte, error) {
	if r.Valid {
		return json.Marshal(r.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON will populate NullString from a json string or null
func (r *NullString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		r.String, r.Valid = "", false
		return nil
	}
	if err := json.Unmarshal(b, &r.String); err != nil {
		return err
	}
	r.Valid = true
	return nil
}
