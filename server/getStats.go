package server

import (
	"fmt"
	"net/http"

	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/performance"
)

// getStats renders operational counters and throughput in plain text for
// operators. Pass verbose=true for the full queue samples.
func (h AppServer) getStats(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {

	renderErrorCounters(w)

	verbose := r.URL.Query().Get("verbose") == "true"

	fmt.Fprintf(w, "\nContact Listings:\n")
	h.Tracker.Reporters[performance.ListContactsCounter].Q.Dump(w, verbose)

	fmt.Fprintf(w, "\nContact Retrievals:\n")
	h.Tracker.Reporters[performance.GetContactCounter].Q.Dump(w, verbose)

	fmt.Fprintf(w, "\nContact Stats:\n")
	h.Tracker.Reporters[performance.ContactStatsCounter].Q.Dump(w, verbose)

	fmt.Fprintf(w, "\nContact Searches:\n")
	h.Tracker.Reporters[performance.SearchContactsCounter].Q.Dump(w, verbose)

	return nil
}
