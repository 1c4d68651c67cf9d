package dao

import (
	"time"

	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
	"github.com/jmoiron/sqlx"
)

// CreateCustomerRelationship enrolls an existing contact into the loyalty
// program with a starting point balance. A contact may hold at most one
// relationship; a second enrollment surfaces the unique constraint error.
func (dao *DataAccessLayer) CreateCustomerRelationship(relationship *models.CustomerRelationship) (models.CustomerRelationship, error) {
	defer util.Time("CreateCustomerRelationship")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.CustomerRelationship{}, err
	}
	dbRelationship, err := createCustomerRelationshipInTransaction(tx, dao, relationship)
	if err != nil {
		dao.GetLogger().Error("error in CreateCustomerRelationship", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbRelationship, err
}

func createCustomerRelationshipInTransaction(tx *sqlx.Tx, dao *DataAccessLayer, relationship *models.CustomerRelationship) (models.CustomerRelationship, error) {
	var dbRelationship models.CustomerRelationship

	if relationship.AppUserID <= 0 {
		return dbRelationship, ErrMissingID
	}
	now := time.Now().UTC()
	if relationship.Created.IsZero() {
		relationship.Created = now
	}
	relationship.LastActivity = now

	id, err := insertReturningID(tx, dao.Driver, `
    insert into customer_relationship (appuser_id, points, created, last_activity)
    values (?, ?, ?, ?)`,
		relationship.AppUserID, relationship.Points, relationship.Created,
		relationship.LastActivity)
	if err != nil {
		return dbRelationship, err
	}
	getRelationshipStatement := tx.Rebind(`
    select
        id
        ,appuser_id
        ,points
        ,created
        ,last_activity
    from customer_relationship
    where id = ?`)
	err = tx.Get(&dbRelationship, getRelationshipStatement, id)
	return dbRelationship, err
}
