package protocol

// ContactResultset encapsulates the Contact defined herein as an array with
// resultset metric information to expose page size, page number, total rows,
// and page count information when retrieving from the data store
type ContactResultset struct {
	// Resultset contains meta information about the resultset
	Resultset
	// Contacts contains the list of contacts in this (page of) results.
	Contacts []Contact `json:"contacts,omitempty"`
}
