package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/mapping"
	"github.com/deciphernow/contact-registry-server/performance"
	"github.com/deciphernow/contact-registry-server/protocol"
)

// getContact returns a single contact by its identifier, serving a recently
// rendered copy from the response cache when one is available.
func (h AppServer) getContact(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	d := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem = gem.WithAction("get")

	captured, _ := CaptureGroupsFromContext(ctx)
	contactID, err := strconv.ParseInt(captured["contactId"], 10, 64)
	if err != nil {
		herr := NewAppError(http.StatusBadRequest, err, "Contact identifier is not parseable")
		h.publishError(gem, herr)
		return herr
	}

	cacheKey := fmt.Sprintf("contact.%d", contactID)
	if item := h.ResponseCache.Get(cacheKey); item != nil && !item.Expired() {
		w.Header().Set("X-Query-Count", "0")
		jsonResponse(w, item.Value().(protocol.Contact))
		h.publishSuccess(gem, http.StatusOK)
		return nil
	}

	begin := h.Tracker.BeginTime(performance.GetContactCounter)
	contact, err := d.GetContact(contactID)
	if err != nil {
		h.Tracker.EndTime(performance.GetContactCounter, begin, performance.SizeJob(0))
		var herr *AppError
		switch err {
		case sql.ErrNoRows, dao.ErrNoRows:
			herr = NewAppError(http.StatusNotFound, nil, fmt.Sprintf("Contact %d not found", contactID))
		default:
			herr = queryError(err, "Error retrieving contact")
		}
		h.publishError(gem, herr)
		return herr
	}
	h.Tracker.EndTime(performance.GetContactCounter, begin, performance.SizeJob(1))

	apiResponse := mapping.MapContactToContact(&contact)
	h.ResponseCache.Set(cacheKey, apiResponse, responseCacheTTL)
	w.Header().Set("X-Query-Count", strconv.Itoa(contact.QueryCount))
	jsonResponse(w, apiResponse)
	h.publishSuccess(gem, http.StatusOK)
	return nil
}
