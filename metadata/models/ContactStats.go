package models

// ContactStats are aggregate counts over the registry as a whole
type ContactStats struct {
	// TotalContacts is the number of contacts in the registry
	TotalContacts int64 `db:"total_contacts"`
	// ContactsWithAddress is the number of contacts with an address assigned
	ContactsWithAddress int64 `db:"contacts_with_address"`
	// ContactsWithRelationship is the number of contacts enrolled in the
	// loyalty program
	ContactsWithRelationship int64 `db:"contacts_with_relationship"`
	// QueryCount is the number of SQL statements executed to produce these
	// counts and is not itself persisted
	QueryCount int `db:"-"`
}
