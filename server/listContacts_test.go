package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/protocol"
)

func TestListContacts(t *testing.T) {
	fakeDAO := &dao.FakeDAO{
		ContactResultSet: sampleResultset(sampleContact(1), sampleContact(2)),
	}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "2", res.Header.Get("X-Query-Count"))
	assert.NotEmpty(t, res.Header.Get("sessionid"))

	var resultset protocol.ContactResultset
	if err := json.NewDecoder(res.Body).Decode(&resultset); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	assert.Equal(t, 2, resultset.TotalRows)
	assert.Len(t, resultset.Contacts, 2)
	assert.Equal(t, "Ada", resultset.Contacts[0].FirstName)

	event, ok := fixture.publisher.last()
	if !ok {
		t.Fatal("no event published")
	}
	assert.Equal(t, "list", event.EventAction())
	assert.True(t, event.IsSuccessful())
}

func TestListContactsQueryParameters(t *testing.T) {
	fakeDAO := &dao.FakeDAO{ContactResultSet: sampleResultset()}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	params := url.Values{}
	params.Set("pageNumber", "3")
	params.Set("pageSize", "25")
	params.Add("filterField", "country")
	params.Add("condition", "equals")
	params.Add("expression", "Germany")
	params.Add("sortField", "lastname")
	params.Add("sortAscending", "false")
	params.Set("filterMatchType", "and")

	res, err := http.Get(fixture.basePath + "/contacts?" + params.Encode())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	if len(fakeDAO.PagingRequests) != 1 {
		t.Fatalf("expected one dao call, got %d", len(fakeDAO.PagingRequests))
	}
	pr := fakeDAO.PagingRequests[0]
	assert.Equal(t, 3, pr.PageNumber)
	assert.Equal(t, 25, pr.PageSize)
	assert.Equal(t, "and", pr.FilterMatchType)
	if assert.Len(t, pr.FilterSettings, 1) {
		assert.Equal(t, "country", pr.FilterSettings[0].FilterField)
		assert.Equal(t, "equals", pr.FilterSettings[0].Condition)
		assert.Equal(t, "Germany", pr.FilterSettings[0].Expression)
	}
	if assert.Len(t, pr.SortSettings, 1) {
		assert.Equal(t, "lastname", pr.SortSettings[0].SortField)
		assert.False(t, pr.SortSettings[0].SortAscending)
	}
}

func TestListContactsFromJSONBody(t *testing.T) {
	fakeDAO := &dao.FakeDAO{ContactResultSet: sampleResultset()}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	body := `{
		"pageNumber": 2,
		"pageSize": 10,
		"sortSettings": [
			{"sortField": "city", "sortAscending": true},
			{"sortField": "lastname", "sortAscending": false}
		]
	}`
	res, err := http.Post(fixture.basePath+"/contacts", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	if len(fakeDAO.PagingRequests) != 1 {
		t.Fatalf("expected one dao call, got %d", len(fakeDAO.PagingRequests))
	}
	pr := fakeDAO.PagingRequests[0]
	assert.Equal(t, 2, pr.PageNumber)
	assert.Equal(t, 10, pr.PageSize)
	assert.Len(t, pr.SortSettings, 2)
}

func TestListContactsBadPagingParameters(t *testing.T) {
	fakeDAO := &dao.FakeDAO{}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts?pageNumber=one")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, fakeDAO.PagingRequests)
}

func TestListContactsQueryTimeout(t *testing.T) {
	fakeDAO := &dao.FakeDAO{Err: dao.ErrQueryTimeout}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)

	var detail map[string]string
	json.NewDecoder(res.Body).Decode(&detail)
	assert.Equal(t, "Query timed out", detail["detail"])

	event, ok := fixture.publisher.last()
	if !ok {
		t.Fatal("no event published")
	}
	assert.False(t, event.IsSuccessful())
}

func TestListContactsCancelled(t *testing.T) {
	fakeDAO := &dao.FakeDAO{ContactResultSet: sampleResultset(sampleContact(1))}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts?_cancel=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, StatusCancelled, res.StatusCode)
	assert.Empty(t, fakeDAO.PagingRequests, "cancelled request must not reach the dao")
}
