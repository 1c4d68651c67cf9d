/*
Package client implements common operations to build applications against the
contact registry API. These focus on listing, retrieval, search, and stats.

Below briefly illustrates a simple cycle of creating a client and using it to
perform a few operations. The first step is to create a new client.

	var conf = Config{
	  // Setup certs, registry URL, etc
	}

	registry, err := NewClient(conf)
	// err handling

This client can then be used to perform operations against the registry.

	paging := protocol.PagingRequest{
	  PageNumber: 1,
	  PageSize:   25,
	  SortSettings: []protocol.SortSetting{
	    {SortField: "lastname", SortAscending: true},
	  },
	}

	resultset, err := registry.ListContacts(paging)

The return from ListContacts carries the total row count alongside the page of
contacts, which can be used to walk subsequent pages. E.g.

	// Fetch the details of the first match.
	contact, err := registry.GetContact(resultset.Contacts[0].ID)
*/
package client
