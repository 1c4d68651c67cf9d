package protocol

// ContactStats conveys aggregate counts over the registry as a whole
type ContactStats struct {
	// TotalContacts is the number of contacts in the registry
	TotalContacts int64 `json:"totalContacts"`
	// ContactsWithAddress is the number of contacts with an address assigned
	ContactsWithAddress int64 `json:"contactsWithAddress"`
	// ContactsWithRelationship is the number of contacts enrolled in the
	// loyalty program
	ContactsWithRelationship int64 `json:"contactsWithRelationship"`
}
