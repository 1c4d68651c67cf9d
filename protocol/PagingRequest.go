package protocol

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/deciphernow/contact-registry-server/util"
)

// DefaultPageSize is the page size used when a request does not specify one.
const DefaultPageSize = 100

// PagingRequest supports a request constrained to a given page number and
// size, with optional filtering, sorting, and search criteria
type PagingRequest struct {
	// PageNumber is the requested page number for this request
	PageNumber int `json:"pageNumber"`
	// PageSize is the requested page size for this request
	PageSize int `json:"pageSize"`
	// FilterSettings is an array of filter settings denoting field, condition,
	// and match expression to filter results
	FilterSettings []FilterSetting `json:"filterSettings,omitempty"`
	// SortSettings is an array of sort settings denoting a field to sort on
	// and direction
	SortSettings []SortSetting `json:"sortSettings,omitempty"`
	// FilterMatchType indicates the kind of matching performed when multiple
	// filters are provided, either "or" (the default) or "and"
	FilterMatchType string `json:"filterMatchType,omitempty"`
	// Search is a phrase matched against the searchable fields of a contact
	Search string `json:"search,omitempty"`
	// Name is a phrase matched against the first and last name of a contact
	Name string `json:"name,omitempty"`
	// ContactID if provided identifies a single contact from the request URI
	ContactID string `json:"-"`
}

// NewPagingRequest parses a PagingRequest from the query string of a request,
// and from its JSON body when allowBody is set and the request carries an
// application/json content type. Query parameter names are matched without
// regard to case. Repeated filterField, condition, and expression parameters
// are zipped positionally into filter settings, as are repeated sortField and
// sortAscending parameters into sort settings. Values captured from the
// request URI override parsed values.
func NewPagingRequest(r *http.Request, captured map[string]string, allowBody bool) (*PagingRequest, error) {
	pr := PagingRequest{PageNumber: 1, PageSize: DefaultPageSize}

	params := make(map[string][]string)
	for key, values := range r.URL.Query() {
		lk := strings.ToLower(key)
		params[lk] = append(params[lk], values...)
	}

	var err error
	if pr.PageNumber, err = intParam(params, "pagenumber", pr.PageNumber); err != nil {
		return nil, err
	}
	if pr.PageSize, err = intParam(params, "pagesize", pr.PageSize); err != nil {
		return nil, err
	}

	filterFields := params["filterfield"]
	conditions := params["condition"]
	expressions := params["expression"]
	for i := 0; i < len(filterFields) && i < len(conditions) && i < len(expressions); i++ {
		pr.FilterSettings = append(pr.FilterSettings, FilterSetting{
			FilterField: filterFields[i],
			Condition:   conditions[i],
			Expression:  expressions[i],
		})
	}

	sortFields := params["sortfield"]
	sortAscendings := params["sortascending"]
	for i, sortField := range sortFields {
		ss := SortSetting{SortField: sortField, SortAscending: true}
		if i < len(sortAscendings) {
			ascending, err := strconv.ParseBool(sortAscendings[i])
			if err != nil {
				return nil, fmt.Errorf("malformed sortAscending parameter %s", sortAscendings[i])
			}
			ss.SortAscending = ascending
		}
		pr.SortSettings = append(pr.SortSettings, ss)
	}

	pr.FilterMatchType = lastParam(params, "filtermatchtype")
	pr.Search = lastParam(params, "search")
	pr.Name = lastParam(params, "name")

	if allowBody && util.IsApplicationJSON(r.Header.Get("Content-Type")) && r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&pr); err != nil {
			return nil, fmt.Errorf("malformed paging request body: %v", err)
		}
	}

	if phrase, ok := captured["searchPhrase"]; ok && len(phrase) > 0 {
		pr.Search = phrase
	}
	if contactID, ok := captured["contactId"]; ok {
		pr.ContactID = contactID
	}

	return &pr, nil
}

func intParam(params map[string][]string, name string, fallback int) (int, error) {
	values := params[name]
	if len(values) == 0 || len(values[len(values)-1]) == 0 {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(values[len(values)-1])
	if err != nil {
		return fallback, fmt.Errorf("malformed %s parameter %s", name, values[len(values)-1])
	}
	return parsed, nil
}

func lastParam(params map[string][]string, name string) string {
	values := params[name]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
