package models

import "time"

// Contact is the flattened representation of a contact as returned from
// listing and retrieval queries, joining the appuser with its optional
// address and customer relationship in a single row. Address and
// relationship columns are nullable because the joins are outer joins.
type Contact struct {
	// ID is the unique identifier for the contact in the registry
	ID int64 `db:"id"`
	// FirstName is the given name of the contact
	FirstName string `db:"first_name"`
	// LastName is the family name of the contact
	LastName string `db:"last_name"`
	// Gender is a single character M, F, or O if provided
	Gender NullString `db:"gender"`
	// CustomerID is the externally referenceable identifier for this contact
	CustomerID string `db:"customer_id"`
	// PhoneNumber is the phone number of the contact if provided
	PhoneNumber NullString `db:"phone_number"`
	// Created reflects the datetime the contact was added to the registry
	Created time.Time `db:"created"`
	// Birthday is the date of birth of the contact if provided
	Birthday NullTime `db:"birthday"`
	// LastUpdated reflects the datetime this contact record was last changed
	LastUpdated time.Time `db:"last_updated"`
	// AddressID references the joined Address by its ID if the contact has one
	AddressID NullInt64 `db:"address_id"`
	// Street is the street name from the joined address
	Street NullString `db:"street"`
	// StreetNumber is the building or house number from the joined address
	StreetNumber NullString `db:"street_number"`
	// CityCode is the postal code from the joined address
	CityCode NullString `db:"city_code"`
	// City is the city name from the joined address
	City NullString `db:"city"`
	// Country is the country name from the joined address
	Country NullString `db:"country"`
	// RelationshipID references the joined CustomerRelationship by its ID if
	// the contact has one
	RelationshipID NullInt64 `db:"relationship_id"`
	// Points is the loyalty point balance from the joined relationship
	Points NullInt64 `db:"points"`
	// RelationshipCreated reflects the datetime the joined relationship was
	// established
	RelationshipCreated NullTime `db:"relationship_created"`
	// LastActivity reflects the datetime of the most recent loyalty activity
	// on the joined relationship
	LastActivity NullTime `db:"last_activity"`
	// QueryCount is the number of SQL statements executed to produce this
	// record and is not itself persisted
	QueryCount int `db:"-"`
}

// ContactResultset encapsulates the Contact defined herein as an array with
// resultset metric information to expose page size, page number, total rows,
// and page count information when retrieving from the database
type ContactResultset struct {
	Resultset
	Contacts []Contact
	// QueryCount is the number of SQL statements executed to produce this
	// resultset
	QueryCount int
}
