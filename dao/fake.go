package dao

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/metadata/models"
)

// FakeDAO is suitable for tests. Add fields to this struct to hold fake
// responses for each of the methods that FakeDAO will implement. These fake
// response fields can be explicitly set, or setup functions can be defined.
type FakeDAO struct {
	Address          models.Address
	Contact          models.Contact
	ContactResultSet models.ContactResultset
	ContactStatsData models.ContactStats
	DBState          models.DBState
	Err              error
	Relationship     models.CustomerRelationship
	User             models.AppUser
	// PagingRequests records the paging requests passed to GetContacts so
	// tests can assert what the handlers built.
	PagingRequests []PagingRequest
}

// CreateAddress for FakeDAO.
func (fake *FakeDAO) CreateAddress(address *models.Address) (models.Address, error) {
	return fake.Address, fake.Err
}

// CreateContact for FakeDAO.
func (fake *FakeDAO) CreateContact(contact *models.AppUser) (models.AppUser, error) {
	return fake.User, fake.Err
}

// CreateCustomerRelationship for FakeDAO.
func (fake *FakeDAO) CreateCustomerRelationship(relationship *models.CustomerRelationship) (models.CustomerRelationship, error) {
	return fake.Relationship, fake.Err
}

// GetContact for FakeDAO. A zero value Contact stands in for an absent row.
func (fake *FakeDAO) GetContact(id int64) (models.Contact, error) {
	if fake.Err != nil {
		return models.Contact{}, fake.Err
	}
	if fake.Contact.ID != id {
		return models.Contact{}, sql.ErrNoRows
	}
	return fake.Contact, nil
}

// GetContacts for FakeDAO.
func (fake *FakeDAO) GetContacts(pagingRequest PagingRequest) (models.ContactResultset, error) {
	fake.PagingRequests = append(fake.PagingRequests, pagingRequest)
	return fake.ContactResultSet, fake.Err
}

// GetContactStats for FakeDAO.
func (fake *FakeDAO) GetContactStats() (models.ContactStats, error) {
	return fake.ContactStatsData, fake.Err
}

// GetDBState for FakeDAO.
func (fake *FakeDAO) GetDBState() (models.DBState, error) {
	return fake.DBState, fake.Err
}

// GetLogger for FakeDAO.
func (fake *FakeDAO) GetLogger() *zap.Logger {
	return config.RootLogger
}

func (fake *FakeDAO) clearError() {
	fake.Err = nil
}

// fakeCompileCheck ensures that FakeDAO implements DAO.
func fakeCompileCheck() DAO {
	return &FakeDAO{}
}
