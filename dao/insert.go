package dao

import (
	"github.com/jmoiron/sqlx"

	"github.com/deciphernow/contact-registry-server/config"
)

// insertReturningID executes an insert built with ? bindvars and yields the
// generated key. PostgreSQL has no LastInsertId support, so the statement
// gains a returning clause there while mysql reads the id off the result.
func insertReturningID(tx *sqlx.Tx, driver string, stmt string, args ...interface{}) (int64, error) {
	if driver == config.DriverPostgres {
		var id int64
		err := tx.Get(&id, tx.Rebind(stmt+` returning id`), args...)
		return id, err
	}
	result, err := tx.Exec(tx.Rebind(stmt), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
