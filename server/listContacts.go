package server

import (
	"net/http"
	"strconv"

	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/mapping"
	"github.com/deciphernow/contact-registry-server/performance"
	"github.com/deciphernow/contact-registry-server/protocol"
)

// listContacts returns a paged resultset of contacts, optionally constrained
// by filter, sort, and name criteria from the paging request.
func (h AppServer) listContacts(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	d := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem = gem.WithAction("list")

	pagingRequest, err := protocol.NewPagingRequest(r, nil, true)
	if err != nil {
		herr := NewAppError(http.StatusBadRequest, err, "Error parsing request parameters")
		h.publishError(gem, herr)
		return herr
	}

	begin := h.Tracker.BeginTime(performance.ListContactsCounter)
	results, err := d.GetContacts(mapping.MapPagingRequestToDAOPagingRequest(pagingRequest))
	if err != nil {
		h.Tracker.EndTime(performance.ListContactsCounter, begin, performance.SizeJob(0))
		herr := queryError(err, "Error retrieving contacts")
		h.publishError(gem, herr)
		return herr
	}
	h.Tracker.EndTime(performance.ListContactsCounter, begin, performance.SizeJob(len(results.Contacts)))

	apiResponse := mapping.MapContactResultsetToContactResultset(&results)
	w.Header().Set("X-Query-Count", strconv.Itoa(results.QueryCount))
	jsonResponse(w, apiResponse)
	h.publishSuccess(gem, http.StatusOK)
	return nil
}

// queryError translates a DAO failure into the response the client sees. A
// query that exceeded its allotted time reports gateway timeout so callers
// can tell an overlong query from a server fault.
func queryError(err error, msg string) *AppError {
	if err == dao.ErrQueryTimeout {
		return NewAppError(http.StatusGatewayTimeout, err, "Query timed out")
	}
	return NewAppError(http.StatusInternalServerError, err, msg)
}
