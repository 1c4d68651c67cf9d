package dao

import (
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
)

// GetContact retrieves a single contact by its identifier, flattened with its
// optional address and loyalty relationship. Absence of a matching row
// surfaces as sql.ErrNoRows.
func (dao *DataAccessLayer) GetContact(id int64) (models.Contact, error) {
	defer util.Time("GetContact")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("Could not begin transaction", zap.String("err", err.Error()))
		return models.Contact{}, err
	}
	contact, err := getContactInTransaction(tx, dao, id)
	if err != nil {
		dao.GetLogger().Error("Error in GetContact", zap.String("err", err.Error()))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return contact, err
}

func getContactInTransaction(tx *sqlx.Tx, dao *DataAccessLayer, id int64) (models.Contact, error) {
	var contact models.Contact

	if id <= 0 {
		return contact, ErrMissingID
	}

	qs, err := beginQuerySession(tx, dao)
	if err != nil {
		contact.QueryCount = qs.statements
		return contact, qs.checked(err)
	}

	query := `select` + queryContactBody + `where u.id = ` + strconv.FormatInt(id, 10)
	err = qs.getStmt(&contact, query)
	qs.end()
	contact.QueryCount = qs.statements
	return contact, qs.checked(err)
}
