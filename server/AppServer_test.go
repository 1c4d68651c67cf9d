package server

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
)

func TestPing(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/ping")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var status map[string]string
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	assert.Equal(t, "ok", status["status"])
	assert.NotEmpty(t, status["node"])
}

func TestDocsListsOperations(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var description apiDescription
	if err := json.NewDecoder(res.Body).Decode(&description); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	assert.Equal(t, "contact-registry", description.Service)
	assert.NotEmpty(t, description.Operations)
}

func TestStatsRendersCountersAndThroughput(t *testing.T) {
	fakeDAO := &dao.FakeDAO{ContactResultSet: sampleResultset(sampleContact(1))}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	// Generate some traffic first
	res, err := http.Get(fixture.basePath + "/contacts")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()

	res, err = http.Get(fixture.basePath + "/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, _ := ioutil.ReadAll(res.Body)
	text := string(body)
	assert.Contains(t, text, "Response Counters:")
	assert.Contains(t, text, "Contact Listings:")
	assert.Contains(t, text, "Contact Searches:")
}

func TestUnknownRouteIs404(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	res, err := http.Get(fixture.basePath + "/nonexistent")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	var detail map[string]string
	json.NewDecoder(res.Body).Decode(&detail)
	assert.Contains(t, detail["detail"], "Resource not found")
}

func TestUnsupportedMethodIs404(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	req, _ := http.NewRequest("DELETE", fixture.basePath+"/contacts/1", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	req, _ := http.NewRequest("OPTIONS", fixture.basePath+"/contacts", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "https://ui.example.com", res.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(res.Header.Get("Access-Control-Allow-Methods"), "GET"))
	assert.Equal(t, "content-type", res.Header.Get("Access-Control-Allow-Headers"))
}

func TestCORSPreflightRequiresOrigin(t *testing.T) {
	fixture := setupTestServer(&dao.FakeDAO{})
	defer fixture.close()

	req, _ := http.NewRequest("OPTIONS", fixture.basePath+"/contacts", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOriginReflectedOnDataRequests(t *testing.T) {
	fakeDAO := &dao.FakeDAO{ContactResultSet: sampleResultset()}
	fixture := setupTestServer(fakeDAO)
	defer fixture.close()

	req, _ := http.NewRequest("GET", fixture.basePath+"/contacts", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	assert.Equal(t, "https://ui.example.com", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestCaptureGroups(t *testing.T) {
	settings := config.ServerSettingsConfiguration{
		BasePath:   "/services/contact-registry/1.0",
		ListenPort: "4480",
		ListenBind: "127.0.0.1",
	}
	app, _ := NewAppServer(settings)
	defer app.Tracker.Stop()

	ctx := parseCaptureGroups(context.Background(), "/services/contact-registry/1.0/contacts/123", app.Routes.Contact)
	captured, ok := CaptureGroupsFromContext(ctx)
	if !ok {
		t.Fatal("expected capture groups on context")
	}
	assert.Equal(t, "123", captured["contactId"])

	ctx = parseCaptureGroups(context.Background(), "/services/contact-registry/1.0/contacts/search/ada", app.Routes.Search)
	captured, _ = CaptureGroupsFromContext(ctx)
	assert.Equal(t, "ada", captured["searchPhrase"])
}
