package dao_test

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/metadata/models"
)

// DAO tests hit a locally-running database directly. They are skipped unless
// CR_TEST_DB names the schema to use, e.g.
//
//	CR_TEST_DB=contactregistry CR_DB_USERNAME=registry CR_DB_PASSWORD=registry go test ./dao
var (
	testDAOOnce sync.Once
	testDAOInst *dao.DataAccessLayer
	testDAOErr  error
)

func testDAO(t *testing.T) *dao.DataAccessLayer {
	t.Helper()
	if os.Getenv("CR_TEST_DB") == "" {
		t.Skip("set CR_TEST_DB to run database tests")
	}
	testDAOOnce.Do(func() {
		conf := config.NewAppConfigurationWithDefaults(config.CommandLineOpts{})
		conf.DatabaseConnection.Schema = os.Getenv("CR_TEST_DB")
		testDAOInst, _, testDAOErr = dao.NewDataAccessLayer(conf.DatabaseConnection)
	})
	if testDAOErr != nil {
		t.Fatalf("could not connect to test database: %v", testDAOErr)
	}
	return testDAOInst
}

// makeContact persists a contact with an address and a relationship and
// returns the stored appuser.
func makeContact(t *testing.T, d *dao.DataAccessLayer, firstName, lastName, city string, points int64) models.AppUser {
	t.Helper()
	address, err := d.CreateAddress(&models.Address{
		Street:       "Main Street",
		StreetNumber: "4",
		CityCode:     "10115",
		City:         city,
		Country:      "Germany",
	})
	if err != nil {
		t.Fatalf("could not create address: %v", err)
	}
	user := models.AppUser{
		FirstName: firstName,
		LastName:  lastName,
		Gender:    models.ToNullString("F"),
		AddressID: models.ToNullInt64(address.ID),
	}
	dbUser, err := d.CreateContact(&user)
	if err != nil {
		t.Fatalf("could not create contact: %v", err)
	}
	if _, err := d.CreateCustomerRelationship(&models.CustomerRelationship{AppUserID: dbUser.ID, Points: points}); err != nil {
		t.Fatalf("could not create relationship: %v", err)
	}
	return dbUser
}

func TestDAOGetContacts(t *testing.T) {
	d := testDAO(t)

	created := makeContact(t, d, "Greta", "Garbo", "Stockholm", 900)

	resultset, err := d.GetContacts(dao.PagingRequest{PageNumber: 1, PageSize: 10, Name: "Garbo"})
	if err != nil {
		t.Fatalf("GetContacts failed: %v", err)
	}
	if resultset.TotalRows < 1 {
		t.Errorf("expected at least one row matching the name")
	}
	if resultset.PageRows != len(resultset.Contacts) {
		t.Errorf("expected PageRows %d to match %d returned contacts", resultset.PageRows, len(resultset.Contacts))
	}
	found := false
	for _, contact := range resultset.Contacts {
		if contact.ID == created.ID {
			found = true
			if !contact.City.Valid || contact.City.String != "Stockholm" {
				t.Errorf("expected the joined city, got %v", contact.City)
			}
			if !contact.Points.Valid || contact.Points.Int64 != 900 {
				t.Errorf("expected the joined points, got %v", contact.Points)
			}
		}
	}
	if !found {
		t.Errorf("expected contact %d in the resultset", created.ID)
	}
	if resultset.QueryCount < 2 {
		t.Errorf("expected the statement tally to cover select and count, got %d", resultset.QueryCount)
	}
}

func TestDAOGetContact(t *testing.T) {
	d := testDAO(t)

	created := makeContact(t, d, "Ingrid", "Bergman", "Stockholm", 450)

	contact, err := d.GetContact(created.ID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if contact.CustomerID != created.CustomerID {
		t.Errorf("expected customer id %s, got %s", created.CustomerID, contact.CustomerID)
	}

	if _, err := d.GetContact(created.ID + 1000000); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for an absent contact, got %v", err)
	}
}

func TestDAOGetContactStats(t *testing.T) {
	d := testDAO(t)

	makeContact(t, d, "Marlene", "Dietrich", "Berlin", 700)

	stats, err := d.GetContactStats()
	if err != nil {
		t.Fatalf("GetContactStats failed: %v", err)
	}
	if stats.TotalContacts < 1 {
		t.Errorf("expected at least one contact, got %d", stats.TotalContacts)
	}
	if stats.ContactsWithAddress > stats.TotalContacts {
		t.Errorf("contacts with address %d cannot exceed total %d", stats.ContactsWithAddress, stats.TotalContacts)
	}
	if stats.ContactsWithRelationship > stats.TotalContacts {
		t.Errorf("contacts with relationship %d cannot exceed total %d", stats.ContactsWithRelationship, stats.TotalContacts)
	}
}
