package models

// Address is a structure defining a physical street address that one or more
// contacts in the registry may reside at
type Address struct {
	// ID is the unique identifier for an address in the registry
	ID int64 `db:"id"`
	// Street is the name of the street for this address
	Street string `db:"street"`
	// StreetNumber is the building or house number, stored as a string to
	// permit values such as 12a or 7-9
	StreetNumber string `db:"street_number"`
	// CityCode is the postal code for the city
	CityCode string `db:"city_code"`
	// City is the name of the city
	City string `db:"city"`
	// Country is the name of the country
	Country string `db:"country"`
}
