package dao

import (
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/metadata/models"
	"github.com/deciphernow/contact-registry-server/util"
	"github.com/jmoiron/sqlx"
)

// CreateAddress adds a new address to the registry and returns it with its
// generated identifier.
func (dao *DataAccessLayer) CreateAddress(address *models.Address) (models.Address, error) {
	defer util.Time("CreateAddress")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.Address{}, err
	}
	dbAddress, err := createAddressInTransaction(tx, dao, address)
	if err != nil {
		dao.GetLogger().Error("error in CreateAddress", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbAddress, err
}

func createAddressInTransaction(tx *sqlx.Tx, dao *DataAccessLayer, address *models.Address) (models.Address, error) {
	var dbAddress models.Address

	id, err := insertReturningID(tx, dao.Driver, `
    insert into address (street, street_number, city_code, city, country)
    values (?, ?, ?, ?, ?)`,
		address.Street, address.StreetNumber, address.CityCode, address.City,
		address.Country)
	if err != nil {
		return dbAddress, err
	}
	getAddressStatement := tx.Rebind(`
    select
        id
        ,street
        ,street_number
        ,city_code
        ,city
        ,country
    from address
    where id = ?`)
	err = tx.Get(&dbAddress, getAddressStatement, id)
	return dbAddress, err
}
