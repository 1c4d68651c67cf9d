package protocol

import "time"

// Contact is the flattened representation of a contact as exposed by the API,
// combining the core contact attributes with those of its optional address
// and loyalty relationship. Fields sourced from an absent address or
// relationship render as null rather than being omitted.
type Contact struct {
	// ID is the unique identifier of this contact in the registry
	ID int64 `json:"id"`
	// FirstName is the given name of the contact
	FirstName string `json:"firstName"`
	// LastName is the family name of the contact
	LastName string `json:"lastName"`
	// Gender is a single character M, F, or O when provided
	Gender *string `json:"gender"`
	// CustomerID is the externally referenceable identifier of this contact
	CustomerID string `json:"customerId"`
	// PhoneNumber is the phone number of the contact when provided
	PhoneNumber *string `json:"phoneNumber"`
	// Created is the datetime this contact was added to the registry
	Created time.Time `json:"created"`
	// Birthday is the date of birth of the contact as YYYY-MM-DD when provided
	Birthday *string `json:"birthday"`
	// LastUpdated is the datetime this contact was last changed
	LastUpdated time.Time `json:"lastUpdated"`
	// AddressID is the identifier of the contact's address when one is assigned
	AddressID *int64 `json:"addressId"`
	// Street is the street name of the contact's address
	Street *string `json:"street"`
	// StreetNumber is the building or house number of the contact's address
	StreetNumber *string `json:"streetNumber"`
	// CityCode is the postal code of the contact's address
	CityCode *string `json:"cityCode"`
	// City is the city of the contact's address
	City *string `json:"city"`
	// Country is the country of the contact's address
	Country *string `json:"country"`
	// RelationshipID is the identifier of the contact's loyalty relationship
	// when enrolled
	RelationshipID *int64 `json:"relationshipId"`
	// Points is the loyalty point balance when enrolled
	Points *int64 `json:"points"`
	// RelationshipCreated is the datetime the loyalty relationship was
	// established when enrolled
	RelationshipCreated *time.Time `json:"relationshipCreated"`
	// LastActivity is the datetime of the most recent loyalty activity when
	// enrolled
	LastActivity *time.Time `json:"lastActivity"`
}
