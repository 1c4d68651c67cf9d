package main

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/deciphernow/contact-registry-server/config"
)

//go:embed migrations/mysql migrations/postgres
var migrationFiles embed.FS

// migrationSource yields the embedded migrations for the driver in use. The
// two dialects carry the same numbered migrations so a deployment can switch
// drivers without renumbering.
func migrationSource(driver string) migrate.MigrationSource {
	root := "migrations/mysql"
	if driver == config.DriverPostgres {
		root = "migrations/postgres"
	}
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       root,
	}
}

// migrateUp applies all pending migrations.
func migrateUp(db *sqlx.DB, driver string) (int, error) {
	return migrate.Exec(db.DB, driver, migrationSource(driver), migrate.Up)
}

// migrateDown rolls back the most recent migration.
func migrateDown(db *sqlx.DB, driver string) (int, error) {
	return migrate.ExecMax(db.DB, driver, migrationSource(driver), migrate.Down, 1)
}

// printMigrationRecords lists the applied migrations and when they ran.
func printMigrationRecords(db *sqlx.DB, driver string) error {
	records, err := migrate.GetMigrationRecords(db.DB, driver)
	if err != nil {
		return err
	}
	fmt.Println("applied migrations:", len(records))
	for _, record := range records {
		fmt.Printf("  %s applied at %s\n", record.Id, record.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
