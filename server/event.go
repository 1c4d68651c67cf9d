package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/events"
	"github.com/deciphernow/contact-registry-server/util"
)

// globalEventFromRequest seeds a GEM from raw request data. Handlers refine
// the action and status before the event is published.
func globalEventFromRequest(r *http.Request) events.GEM {
	return events.GEM{
		ID:              uuid.New().String(),
		SchemaVersion:   "1.0",
		EventType:       "contact-registry-event",
		SystemIP:        util.GetIP(config.RootLogger),
		XForwardedForIP: r.Header.Get("X-Forwarded-For"),
		Timestamp:       time.Now().Unix(),
		Action:          "unknown",
		Payload: events.Payload{
			Resource:   r.URL.Path,
			Query:      r.URL.RawQuery,
			RemoteAddr: r.RemoteAddr,
		},
	}
}
