package models

import "time"

// CustomerRelationship is a structure defining the loyalty program state for
// a contact. At most one relationship exists per contact, and it is removed
// along with the contact it references.
type CustomerRelationship struct {
	// ID is the unique identifier for a relationship in the registry
	ID int64 `db:"id"`
	// AppUserID references the AppUser by its ID that holds this relationship
	AppUserID int64 `db:"appuser_id"`
	// Points is the accumulated loyalty point balance
	Points int64 `db:"points"`
	// Created reflects the datetime the relationship was established
	Created time.Time `db:"created"`
	// LastActivity reflects the datetime of the most recent loyalty activity
	LastActivity time.Time `db:"last_activity"`
}
