package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppUser is a structure defining the attributes of a contact tracked in the
// registry. Unique to this element is the CustomerID which is assigned at
// creation time and exposed to external systems in place of the database ID.
type AppUser struct {
	// ID is the unique identifier for a contact in the registry
	ID int64 `db:"id"`
	// FirstName is the given name of the contact
	FirstName string `db:"first_name"`
	// LastName is the family name of the contact
	LastName string `db:"last_name"`
	// Gender is a single character M, F, or O if provided
	Gender NullString `db:"gender"`
	// CustomerID is the externally referenceable identifier for this contact
	// in the form CUST- followed by 12 uppercased hex digits
	CustomerID string `db:"customer_id"`
	// PhoneNumber is the phone number of the contact if provided
	PhoneNumber NullString `db:"phone_number"`
	// Created reflects the datetime the contact was added to the registry
	Created time.Time `db:"created"`
	// AddressID references the Address by its ID where this contact resides,
	// if known. Removal of the address leaves this unset.
	AddressID NullInt64 `db:"address_id"`
	// Birthday is the date of birth of the contact if provided
	Birthday NullTime `db:"birthday"`
	// LastUpdated reflects the datetime this contact record was last changed
	LastUpdated time.Time `db:"last_updated"`
}

// CustomerIDPrefix is prepended to the random portion of generated customer
// identifiers.
const CustomerIDPrefix = "CUST-"

// NewCustomerID generates an identifier suitable for the CustomerID field of
// an AppUser, in the form CUST- followed by the first 12 hex digits of a
// random UUID, uppercased.
func NewCustomerID() string {
	random := strings.Replace(uuid.New().String(), "-", "", -1)
	return CustomerIDPrefix + strings.ToUpper(random[:12])
}
