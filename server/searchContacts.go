package server

import (
	"net/http"
	"strconv"

	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/mapping"
	"github.com/deciphernow/contact-registry-server/performance"
	"github.com/deciphernow/contact-registry-server/protocol"
)

// searchContacts returns a paged resultset of contacts whose searchable
// fields match the phrase captured from the request URI.
func (h AppServer) searchContacts(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	d := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem = gem.WithAction("search")

	// r.URL.Path is already percent-decoded, so the captured phrase is
	// used as-is.
	captured, _ := CaptureGroupsFromContext(ctx)

	pagingRequest, err := protocol.NewPagingRequest(r, captured, true)
	if err != nil {
		herr := NewAppError(http.StatusBadRequest, err, "Error parsing request parameters")
		h.publishError(gem, herr)
		return herr
	}

	begin := h.Tracker.BeginTime(performance.SearchContactsCounter)
	results, err := d.GetContacts(mapping.MapPagingRequestToDAOPagingRequest(pagingRequest))
	if err != nil {
		h.Tracker.EndTime(performance.SearchContactsCounter, begin, performance.SizeJob(0))
		herr := queryError(err, "Error searching contacts")
		h.publishError(gem, herr)
		return herr
	}
	h.Tracker.EndTime(performance.SearchContactsCounter, begin, performance.SizeJob(len(results.Contacts)))

	apiResponse := mapping.MapContactResultsetToContactResultset(&results)
	w.Header().Set("X-Query-Count", strconv.Itoa(results.QueryCount))
	jsonResponse(w, apiResponse)
	h.publishSuccess(gem, http.StatusOK)
	return nil
}
