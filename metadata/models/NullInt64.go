package models

import (
	"database/sql"
	"encoding/json"
)

/*
NullInt64 supports setting a null value for an integer datatype from a database
*/
type NullInt64 struct {
	sql.NullInt64
}

// ToNullInt64 wraps an int64 as a valid NullInt64
func ToNullInt64(i int64) NullInt64 {
	return NullInt64{sql.NullInt64{Int64: i, Valid: true}}
}

/*
MarshalJSON will return the jsonified expression of NullInt64 if considered
valid or nil otherwise
*/
func (r NullInt64) MarshalJSON() ([]byte, error) {
	if r.Valid {
		return json.Marshal(r.Int64)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON will populate NullInt64 from a json number or null
func (r *NullInt64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		r.Int64, r.Valid = 0, false
		return nil
	}
	if err := json.Unmarshal(b, &r.Int64); err != nil {
		return err
	}
	r.Valid = true
	return nil
}
