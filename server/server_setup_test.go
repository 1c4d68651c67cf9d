package server

import (
	"net/http/httptest"
	"sync"
	"time"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/events"
	"github.com/deciphernow/contact-registry-server/metadata/models"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Reconnect() bool {
	return false
}

func (p *recordingPublisher) last() (events.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil, false
	}
	return p.events[len(p.events)-1], true
}

type testFixture struct {
	server    *httptest.Server
	app       *AppServer
	fakeDAO   *dao.FakeDAO
	publisher *recordingPublisher
	basePath  string
}

// setupTestServer builds an AppServer backed by a FakeDAO and a recording
// event publisher around an httptest listener.
func setupTestServer(fakeDAO *dao.FakeDAO) *testFixture {
	settings := config.ServerSettingsConfiguration{
		BasePath:   "/services/contact-registry/1.0",
		ListenPort: "4480",
		ListenBind: "127.0.0.1",
	}
	app, _ := NewAppServer(settings)
	publisher := &recordingPublisher{}
	app.RootDAO = fakeDAO
	app.EventQueue = publisher
	testServer := httptest.NewServer(app)
	return &testFixture{
		server:    testServer,
		app:       app,
		fakeDAO:   fakeDAO,
		publisher: publisher,
		basePath:  testServer.URL + settings.BasePath,
	}
}

func (f *testFixture) close() {
	f.server.Close()
	f.app.Tracker.Stop()
}

func sampleContact(id int64) models.Contact {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	return models.Contact{
		ID:          id,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Gender:      models.ToNullString("F"),
		CustomerID:  "b52a9dcc-127e-4d6a-9e04-bcbf6cf1f903",
		PhoneNumber: models.ToNullString("+15125550001"),
		Created:     now,
		LastUpdated: now,
		QueryCount:  2,
	}
}

func sampleResultset(contacts ...models.Contact) models.ContactResultset {
	rs := models.ContactResultset{Contacts: contacts, QueryCount: 2}
	rs.TotalRows = len(contacts)
	rs.PageNumber = 1
	rs.PageSize = 100
	rs.PageCount = 1
	rs.PageRows = len(contacts)
	return rs
}
