package dao

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/metadata/models"
)

// SchemaVersion marks compatibility with previously created databases.
// On startup, we should be checking the schema, and raise some alarm if
// the schema is out of date, or trigger a migration, etc.
var SchemaVersion = "20260315"

// DAO defines the contract our app has with the database.
type DAO interface {
	CreateAddress(address *models.Address) (models.Address, error)
	CreateContact(contact *models.AppUser) (models.AppUser, error)
	CreateCustomerRelationship(relationship *models.CustomerRelationship) (models.CustomerRelationship, error)
	GetContact(id int64) (models.Contact, error)
	GetContacts(pagingRequest PagingRequest) (models.ContactResultset, error)
	GetContactStats() (models.ContactStats, error)
	GetDBState() (models.DBState, error)
	GetLogger() *zap.Logger
}

// DataAccessLayer is a concrete DAO implementation with a true DB connection.
type DataAccessLayer struct {
	// MetadataDB is the connection.
	MetadataDB *sqlx.DB
	// Driver names the sql driver in use, mysql or postgres.
	Driver string
	// QueryTimeout bounds the statements of a single DAO call. Zero disables
	// the session timeout command and the elapsed check.
	QueryTimeout time.Duration
	// DeadlockRetryCounter is the number of times a write is retried when the
	// database reports contention.
	DeadlockRetryCounter int64
	// DeadlockRetryDelay is the time in milliseconds between retries.
	DeadlockRetryDelay int64
	// Logger has a default, but can be updated by passing options to constructor.
	Logger *zap.Logger
}

// Opt sets an option on DataAccessLayer.
type Opt func(*DataAccessLayer)

// WithLogger sets a custom logger on DataAccessLayer.
func WithLogger(logger *zap.Logger) Opt {
	return func(d *DataAccessLayer) {
		d.Logger = logger
	}
}

// WithQueryTimeout overrides the query timeout on DataAccessLayer.
func WithQueryTimeout(timeout time.Duration) Opt {
	return func(d *DataAccessLayer) {
		d.QueryTimeout = timeout
	}
}

// NewDataAccessLayer constructs a new DataAccessLayer with defaults and options. A string database
// identifier is also returned.
func NewDataAccessLayer(conf config.DatabaseConfiguration, opts ...Opt) (*DataAccessLayer, string, error) {

	db, err := conf.GetDatabaseHandle()
	if err != nil {
		return nil, "", err
	}
	d := DataAccessLayer{
		MetadataDB:           db,
		Driver:               conf.Driver,
		QueryTimeout:         time.Duration(conf.QueryTimeoutSeconds) * time.Second,
		DeadlockRetryCounter: conf.DeadlockRetryCounter,
		DeadlockRetryDelay:   conf.DeadlockRetryDelay,
	}

	defaults(&d)
	for _, opt := range opts {
		opt(&d)
	}

	err = pingDB(&d)
	if err != nil {
		return nil, "", fmt.Errorf("could not ping database: %v", err)
	}

	state, err := d.GetDBState()
	if err != nil {
		return nil, "", fmt.Errorf("getting db state failed: %v", err)
	}

	return &d, state.Identifier, nil
}

func defaults(d *DataAccessLayer) {
	d.Logger = config.RootLogger.With(zap.String("node", config.NodeID))
	if len(d.Driver) == 0 {
		d.Driver = config.DriverMySQL
	}
}

// GetLogger is a logger, probably for this session
func (d *DataAccessLayer) GetLogger() *zap.Logger {
	return d.Logger
}

func daoCompileCheck() DAO {
	// function exists to make compiler complain when interface changes.
	return &DataAccessLayer{}
}

func pingDB(d *DataAccessLayer) error {

	logger := d.GetLogger()

	attempts := 0
	max := 20
	sleep := 3

	var err error

	for attempts < max {

		attempts++

		err = d.MetadataDB.Ping()
		if err != nil {
			logger.Info("db sleep for retry")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		if _, err = d.GetDBState(); err != nil {
			logger.Info("db available but schema not populated")
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}
		break
	}
	return err
}
