package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deciphernow/contact-registry-server/protocol"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c, err := NewClient(Config{Remote: server.URL + "/services/contact-registry/1.0"})
	if err != nil {
		server.Close()
		t.Fatalf("could not build client: %v", err)
	}
	return c, server
}

func TestClientPing(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/contact-registry/1.0/ping", r.URL.Path)
		fmt.Fprint(w, `{"status":"ok","node":"deadbeef"}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	if err := c.Ping(); err != nil {
		t.Errorf("ping failed: %v", err)
	}
	assert.Equal(t, http.StatusOK, c.LastStatusCode)
}

func TestClientGetContact(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/contact-registry/1.0/contacts/42", r.URL.Path)
		w.Header().Set("X-Query-Count", "2")
		fmt.Fprint(w, `{"id":42,"firstName":"Ada","lastName":"Lovelace","customerId":"abc"}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	contact, err := c.GetContact(42)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	assert.Equal(t, int64(42), contact.ID)
	assert.Equal(t, "Ada", contact.FirstName)
	assert.Equal(t, 2, c.LastQueryCount)
}

func TestClientGetContactNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "Contact 9 not found"}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	_, err := c.GetContact(9)
	if err == nil {
		t.Fatal("expected error for missing contact")
	}
	assert.Contains(t, err.Error(), "Contact 9 not found")
	assert.Equal(t, http.StatusNotFound, c.LastStatusCode)
}

func TestClientListContactsBuildsQuery(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"totalRows":0}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	paging := protocol.PagingRequest{
		PageNumber: 2,
		PageSize:   50,
		FilterSettings: []protocol.FilterSetting{
			{FilterField: "country", Condition: "equals", Expression: "Germany"},
		},
		SortSettings: []protocol.SortSetting{
			{SortField: "lastname", SortAscending: false},
		},
		FilterMatchType: "and",
	}
	_, err := c.ListContacts(paging)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	assert.Contains(t, gotQuery, "pageNumber=2")
	assert.Contains(t, gotQuery, "pageSize=50")
	assert.Contains(t, gotQuery, "filterField=country")
	assert.Contains(t, gotQuery, "expression=Germany")
	assert.Contains(t, gotQuery, "sortField=lastname")
	assert.Contains(t, gotQuery, "sortAscending=false")
	assert.Contains(t, gotQuery, "filterMatchType=and")
}

func TestClientSearchEscapesPhrase(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"totalRows":0}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	_, err := c.Search("ada lovelace", protocol.PagingRequest{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	assert.Equal(t, "/services/contact-registry/1.0/contacts/search/ada%20lovelace", gotPath)
}

func TestClientStats(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/contact-registry/1.0/contacts/stats", r.URL.Path)
		fmt.Fprint(w, `{"totalContacts":100,"contactsWithAddress":90,"contactsWithRelationship":85}`)
	})
	c, server := newTestClient(t, handler)
	defer server.Close()

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	assert.Equal(t, int64(100), stats.TotalContacts)
	assert.Equal(t, int64(90), stats.ContactsWithAddress)
	assert.Equal(t, int64(85), stats.ContactsWithRelationship)
}
