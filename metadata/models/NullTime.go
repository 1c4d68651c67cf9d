package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NullTime supports setting a null value for a timestamp datatype from a database
type NullTime struct {
	sql.NullTime
}

// ToNullTime wraps a time as a valid NullTime
func ToNullTime(t time.Time) NullTime {
	return NullTime{sql.NullTime{Time: t, Valid: true}}
}

// MarshalJSON will return the jsonified expression of NullTime if considered
// valid or nil otherwise
func (r NullTime) MarshalJSON() ([]byte, error) {
	if r.Valid {
		return json.Marshal(r.Time)
	}
	return json.Marshal(nil)
}
