package models

import "time"

// DBState reflects the identity and schema version of the database this
// service is connected to
type DBState struct {
	// CreatedDate is the datetime the schema was first created
	CreatedDate time.Time `db:"createddate"`
	// ModifiedDate is the datetime the schema was last migrated
	ModifiedDate time.Time `db:"modifieddate"`
	// SchemaVersion is the version identifier of the schema in place. Code
	// should be using the same schema version as the database.
	SchemaVersion string `db:"schemaversion"`
	// Identifier is a unique id for this database instance
	Identifier string `db:"identifier"`
}
