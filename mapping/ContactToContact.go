package mapping

import (
	"time"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/protocol"
)

// BirthdayFormat is the wire layout for a contact date of birth.
const BirthdayFormat = "2006-01-02"

// MapContactToContact converts an internal Contact model into an API
// exposable protocol Contact. Absent address and relationship parts map to
// nil pointers which render as JSON null.
func MapContactToContact(i *models.Contact) protocol.Contact {
	o := protocol.Contact{}
	o.ID = i.ID
	o.FirstName = i.FirstName
	o.LastName = i.LastName
	o.Gender = toStringPtr(i.Gender)
	o.CustomerID = i.CustomerID
	o.PhoneNumber = toStringPtr(i.PhoneNumber)
	o.Created = i.Created
	o.Birthday = toDatePtr(i.Birthday)
	o.LastUpdated = i.LastUpdated
	o.AddressID = toInt64Ptr(i.AddressID)
	o.Street = toStringPtr(i.Street)
	o.StreetNumber = toStringPtr(i.StreetNumber)
	o.CityCode = toStringPtr(i.CityCode)
	o.City = toStringPtr(i.City)
	o.Country = toStringPtr(i.Country)
	o.RelationshipID = toInt64Ptr(i.RelationshipID)
	o.Points = toInt64Ptr(i.Points)
	o.RelationshipCreated = toTimePtr(i.RelationshipCreated)
	o.LastActivity = toTimePtr(i.LastActivity)
	return o
}

// MapContactsToContacts converts an array of internal Contact models into an
// array of API exposable protocol Contacts
func MapContactsToContacts(i *[]models.Contact) []protocol.Contact {
	o := make([]protocol.Contact, len(*i))
	for p, q := range *i {
		o[p] = MapContactToContact(&q)
	}
	return o
}

// MapContactResultsetToContactResultset converts an internal resultset of
// Contact models into a protocol resultset for API response
func MapContactResultsetToContactResultset(i *models.ContactResultset) protocol.ContactResultset {
	o := protocol.ContactResultset{}
	o.Resultset.TotalRows = i.Resultset.TotalRows
	o.Resultset.PageCount = i.Resultset.PageCount
	o.Resultset.PageNumber = i.Resultset.PageNumber
	o.Resultset.PageSize = i.Resultset.PageSize
	o.Resultset.PageRows = i.Resultset.PageRows
	o.Contacts = MapContactsToContacts(&i.Contacts)
	return o
}

// MapContactStatsToContactStats converts internal registry aggregates into
// the protocol shape
func MapContactStatsToContactStats(i *models.ContactStats) protocol.ContactStats {
	o := protocol.ContactStats{}
	o.TotalContacts = i.TotalContacts
	o.ContactsWithAddress = i.ContactsWithAddress
	o.ContactsWithRelationship = i.ContactsWithRelationship
	return o
}

func toStringPtr(i models.NullString) *string {
	if !i.Valid {
		return nil
	}
	s := i.String
	return &s
}

func toInt64Ptr(i models.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

func toTimePtr(i models.NullTime) *time.Time {
	if !i.Valid {
		return nil
	}
	t := i.Time
	return &t
}

func toDatePtr(i models.NullTime) *string {
	if !i.Valid {
		return nil
	}
	s := i.Time.Format(BirthdayFormat)
	return &s
}
