/*
Package protocol provides structures which represent operations and returns
from the Contact Registry.

Basics

The Contact structure is the flattened representation of a contact together
with its optional address and loyalty relationship, and is the structure
returned from listing, search, and retrieval operations.  Listing operations
return a ContactResultset which wraps a page of contacts with resultset
metrics.

Listing requests are expressed with a PagingRequest, combining a page number
and size with filter settings, sort settings, and search phrases.
NewPagingRequest parses one from an inbound HTTP request.

*/
package protocol
