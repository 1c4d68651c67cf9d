package main

import (
	"strings"
	"testing"

	"github.com/deciphernow/contact-registry-server/config"
)

// The initial migration must stand up every table the data access layer
// reads, for both dialects. NewDataAccessLayer consults dbstate on startup,
// so a schema without it can never serve.
func TestMigrationsCreateServedTables(t *testing.T) {
	tables := []string{"dbstate", "address", "appuser", "customer_relationship"}

	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres} {
		migrations, err := migrationSource(driver).FindMigrations()
		if err != nil {
			t.Fatalf("%s: could not read embedded migrations: %v", driver, err)
		}
		if len(migrations) == 0 {
			t.Fatalf("%s: no migrations embedded", driver)
		}
		up := strings.ToLower(strings.Join(migrations[0].Up, "\n"))
		for _, table := range tables {
			if !strings.Contains(up, "create table if not exists "+table) {
				t.Errorf("%s: initial migration does not create table %s", driver, table)
			}
		}
		if !strings.Contains(up, "insert into dbstate") {
			t.Errorf("%s: initial migration does not populate dbstate", driver)
		}
		if !strings.Contains(up, "references address(id) on delete set null") {
			t.Errorf("%s: address removal must leave contacts with a null address_id", driver)
		}
		if !strings.Contains(up, "references appuser(id) on delete cascade") {
			t.Errorf("%s: contact removal must take its relationship with it", driver)
		}
		down := strings.ToLower(strings.Join(migrations[0].Down, "\n"))
		for _, table := range tables {
			if !strings.Contains(down, "drop table if exists "+table) {
				t.Errorf("%s: initial migration does not drop table %s on the way down", driver, table)
			}
		}
	}
}
