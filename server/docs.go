package server

import (
	"net/http"

	"golang.org/x/net/context"
)

type apiOperation struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type apiDescription struct {
	Service    string         `json:"service"`
	Version    string         `json:"version"`
	Operations []apiOperation `json:"operations"`
}

// docs is a method handler on AppServer for displaying a response when the
// root URI is requested without an operation. It lists the available
// operations relative to the configured base path.
func (h AppServer) docs(ctx context.Context, w http.ResponseWriter, r *http.Request) *AppError {
	base := h.Conf.BasePath
	description := apiDescription{
		Service: "contact-registry",
		Version: "1.0",
		Operations: []apiOperation{
			{"GET", base + "/contacts", "List contacts with paging, filtering, and sorting"},
			{"GET", base + "/contacts/{contactId}", "Retrieve a single contact"},
			{"GET", base + "/contacts/stats", "Aggregate counts over the registry"},
			{"GET", base + "/contacts/search/{searchPhrase}", "Search contacts by phrase"},
			{"GET", base + "/ping", "Liveness probe"},
			{"GET", base + "/stats", "Operational counters and throughput"},
		},
	}
	jsonResponse(w, description)
	return nil
}
