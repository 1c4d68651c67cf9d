package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/protocol"
)

func TestGetContactStats(t *testing.T) {
	fakeDAO := &dao.FakeDAO{
		ContactStatsData: models.ContactStats{
			TotalContacts:            1000,
			ContactsWithAddress:      900,
			ContactsWithRelationship: 850,
			QueryCount:               3,
		},
	}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "3", res.Header.Get("X-Query-Count"))

	var stats protocol.ContactStats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	assert.Equal(t, int64(1000), stats.TotalContacts)
	assert.Equal(t, int64(900), stats.ContactsWithAddress)
	assert.Equal(t, int64(850), stats.ContactsWithRelationship)

	event, ok := fixture.publisher.last()
	if !ok {
		t.Fatal("no event published")
	}
	assert.Equal(t, "stats", event.EventAction())
}

func TestGetContactStatsServesCachedCopy(t *testing.T) {
	fakeDAO := &dao.FakeDAO{
		ContactStatsData: models.ContactStats{TotalContacts: 5, QueryCount: 3},
	}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()

	res, err = http.Get(fixture.basePath + "/contacts/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, "0", res.Header.Get("X-Query-Count"), "second read answered from cache")
}

func TestGetContactStatsQueryTimeout(t *testing.T) {
	fakeDAO := &dao.FakeDAO{Err: dao.ErrQueryTimeout}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
}

func TestGetContactStatsCancelled(t *testing.T) {
	fakeDAO := &dao.FakeDAO{}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/contacts/stats?_cancel=true")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, StatusCancelled, res.StatusCode)
}
