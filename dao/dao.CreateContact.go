package dao

import (
	"time"

	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
	"github.com/jmoiron/sqlx"
)

// CreateContact adds a new contact to the registry. At a minimum the first
// and last name must exist. A blank customer id is assigned a generated one,
// and the created and last updated stamps are set. Once added, the record is
// retrieved and returned with its generated identifier.
func (dao *DataAccessLayer) CreateContact(contact *models.AppUser) (models.AppUser, error) {
	defer util.Time("CreateContact")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	retryOnErrorMessageContains := []string{"Duplicate entry", "Deadlock", "Lock wait timeout exceeded"}
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return models.AppUser{}, err
	}
	dbContact, err := createContactInTransaction(tx, dao, contact)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for createContactInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		// a duplicate generated customer id gets a fresh draw on retry
		if util.FirstMatch(err.Error(), retryOnErrorMessageContains) == "Duplicate entry" {
			contact.CustomerID = models.NewCustomerID()
		}
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return models.AppUser{}, err
		}
		dbContact, err = createContactInTransaction(tx, dao, contact)
	}
	if err != nil {
		logger.Error("error in CreateContact", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbContact, err
}

func createContactInTransaction(tx *sqlx.Tx, dao *DataAccessLayer, contact *models.AppUser) (models.AppUser, error) {
	var dbContact models.AppUser

	if len(contact.FirstName) == 0 || len(contact.LastName) == 0 {
		return dbContact, ErrMissingName
	}
	if len(contact.CustomerID) == 0 {
		contact.CustomerID = models.NewCustomerID()
	}
	now := time.Now().UTC()
	if contact.Created.IsZero() {
		contact.Created = now
	}
	contact.LastUpdated = now

	// Add it
	id, err := insertReturningID(tx, dao.Driver, `
    insert into appuser (first_name, last_name, gender, customer_id, phone_number, created, address_id, birthday, last_updated)
    values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.FirstName, contact.LastName, contact.Gender, contact.CustomerID,
		contact.PhoneNumber, contact.Created, contact.AddressID, contact.Birthday,
		contact.LastUpdated)
	if err != nil {
		return dbContact, err
	}
	// Retrieve it
	getContactStatement := tx.Rebind(`
    select
        id
        ,first_name
        ,last_name
        ,gender
        ,customer_id
        ,phone_number
        ,created
        ,address_id
        ,birthday
        ,last_updated
    from appuser
    where id = ?`)
	err = tx.Get(&dbContact, getContactStatement, id)
	return dbContact, err
}
