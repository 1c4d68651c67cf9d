package dao

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/util"
)

// querySession brackets the statements of a single DAO call with the
// session-level timeout command and tallies every statement issued on the
// transaction. The timeout command constrains statements the server has not
// yet begun executing; a statement already in flight runs to completion, so
// callers must also consult expired() once their statements return.
type querySession struct {
	tx         *sqlx.Tx
	driver     string
	timeout    time.Duration
	started    time.Time
	statements int
}

// fragments of driver error text raised when the server cuts a statement off
var timeoutErrorFragments = []string{
	"max_execution_time",
	"maximum statement execution time",
	"statement timeout",
	"canceling statement",
	"query execution was interrupted",
}

// beginQuerySession issues the timeout command for the current database
// session when the DAO carries a positive QueryTimeout.
func beginQuerySession(tx *sqlx.Tx, dao *DataAccessLayer) (*querySession, error) {
	qs := &querySession{tx: tx, driver: dao.Driver, timeout: dao.QueryTimeout, started: time.Now()}
	if qs.timeout <= 0 {
		return qs, nil
	}
	ms := int64(qs.timeout / time.Millisecond)
	var stmt string
	switch qs.driver {
	case config.DriverPostgres:
		stmt = fmt.Sprintf("SET statement_timeout = %d", ms)
	case config.DriverMySQL:
		stmt = fmt.Sprintf("SET SESSION max_execution_time = %d", ms)
	default:
		return qs, ErrUnknownDriver
	}
	qs.statements++
	if _, err := tx.Exec(stmt); err != nil {
		return qs, err
	}
	return qs, nil
}

// end restores the session timeout to the server default. Reset failures are
// ignored; the transaction is closing.
func (qs *querySession) end() {
	if qs.timeout <= 0 {
		return
	}
	var stmt string
	switch qs.driver {
	case config.DriverPostgres:
		stmt = "SET statement_timeout = DEFAULT"
	default:
		stmt = "SET SESSION max_execution_time = DEFAULT"
	}
	qs.statements++
	qs.tx.Exec(stmt)
}

// selectStmt runs a query through sqlx.Select against the transaction,
// counting it toward the session statement tally.
func (qs *querySession) selectStmt(dest interface{}, query string) error {
	qs.statements++
	return qs.tx.Select(dest, query)
}

// getStmt runs a single row query through sqlx.Get against the transaction,
// counting it toward the session statement tally.
func (qs *querySession) getStmt(dest interface{}, query string) error {
	qs.statements++
	return qs.tx.Get(dest, query)
}

// expired reports whether the elapsed wall time for this session has passed
// the configured budget.
func (qs *querySession) expired() bool {
	if qs.timeout <= 0 {
		return false
	}
	return time.Since(qs.started) > qs.timeout
}

// checked maps driver errors raised by the timeout command to
// ErrQueryTimeout, raises ErrQueryTimeout when the budget has elapsed even
// though rows came back, and passes every other error through.
func (qs *querySession) checked(err error) error {
	if err != nil {
		if util.ContainsAny(strings.ToLower(err.Error()), timeoutErrorFragments) {
			return ErrQueryTimeout
		}
		return err
	}
	if qs.expired() {
		return ErrQueryTimeout
	}
	return nil
}
