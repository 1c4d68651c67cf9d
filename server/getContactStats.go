package server

import (
	"net/http"
	"strconv"

	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/mapping"
	"github.com/deciphernow/contact-registry-server/performance"
	"github.com/deciphernow/contact-registry-server/protocol"
)

const statsCacheKey = "contacts.stats"

// getContactStats returns aggregate counts over the registry.
func (h AppServer) getContactStats(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	d := DAOFromContext(ctx)
	gem, _ := GEMFromContext(ctx)
	gem = gem.WithAction("stats")

	if item := h.ResponseCache.Get(statsCacheKey); item != nil && !item.Expired() {
		w.Header().Set("X-Query-Count", "0")
		jsonResponse(w, item.Value().(protocol.ContactStats))
		h.publishSuccess(gem, http.StatusOK)
		return nil
	}

	begin := h.Tracker.BeginTime(performance.ContactStatsCounter)
	stats, err := d.GetContactStats()
	if err != nil {
		h.Tracker.EndTime(performance.ContactStatsCounter, begin, performance.SizeJob(0))
		herr := queryError(err, "Error retrieving contact stats")
		h.publishError(gem, herr)
		return herr
	}
	h.Tracker.EndTime(performance.ContactStatsCounter, begin, performance.SizeJob(1))

	apiResponse := mapping.MapContactStatsToContactStats(&stats)
	h.ResponseCache.Set(statsCacheKey, apiResponse, responseCacheTTL)
	w.Header().Set("X-Query-Count", strconv.Itoa(stats.QueryCount))
	jsonResponse(w, apiResponse)
	h.publishSuccess(gem, http.StatusOK)
	return nil
}
