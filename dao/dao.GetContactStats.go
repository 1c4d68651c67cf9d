package dao

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
)

// GetContactStats retrieves aggregate counts over the registry, the total
// number of contacts and how many of those carry an address or a loyalty
// relationship
func (dao *DataAccessLayer) GetContactStats() (models.ContactStats, error) {
	defer util.Time("GetContactStats")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("Could not begin transaction", zap.String("err", err.Error()))
		return models.ContactStats{}, err
	}
	stats, err := getContactStatsInTransaction(tx, dao)
	if err != nil {
		dao.GetLogger().Error("Error in GetContactStats", zap.String("err", err.Error()))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return stats, err
}

func getContactStatsInTransaction(tx *sqlx.Tx, dao *DataAccessLayer) (models.ContactStats, error) {
	stats := models.ContactStats{}

	qs, err := beginQuerySession(tx, dao)
	if err != nil {
		stats.QueryCount = qs.statements
		return stats, qs.checked(err)
	}

	if err := qs.getStmt(&stats.TotalContacts, `select count(0) from appuser`); err != nil {
		qs.end()
		stats.QueryCount = qs.statements
		return stats, qs.checked(err)
	}
	if err := qs.getStmt(&stats.ContactsWithAddress, `select count(0) from appuser where address_id is not null`); err != nil {
		qs.end()
		stats.QueryCount = qs.statements
		return stats, qs.checked(err)
	}
	// at most one relationship exists per appuser, so no distinct needed
	if err := qs.getStmt(&stats.ContactsWithRelationship, `select count(0) from customer_relationship`); err != nil {
		qs.end()
		stats.QueryCount = qs.statements
		return stats, qs.checked(err)
	}
	qs.end()
	stats.QueryCount = qs.statements

	return stats, qs.checked(nil)
}
