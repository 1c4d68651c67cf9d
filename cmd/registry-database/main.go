package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli"

	"github.com/deciphernow/contact-registry-server/config"
)

// defaultConfig holds values suitable for a containerized test db.
var defaultConfig = config.AppConfiguration{
	DatabaseConnection: config.DatabaseConfiguration{
		Driver:   config.DriverMySQL,
		Host:     "127.0.0.1",
		Port:     "3306",
		Schema:   "contactregistry",
		Protocol: "tcp",
		Username: "dbuser",
		Password: "dbPassword",
	},
}

func main() {

	app := cli.NewApp()
	app.Name = "registry-database"
	app.Usage = "contact registry database manager for setup, migrations, and seeding"

	// Declare flags common to commands, and pass them in Flags below.
	confFlag := cli.StringFlag{
		Name:  "conf",
		Usage: "Path to yaml config",
	}

	force := cli.BoolFlag{
		Name:  "force",
		Usage: "ignore safety checks and initialize a non-empty schema",
	}

	rootUser := cli.StringFlag{
		Name:  "rootUser",
		Usage: "user required for schema modification; has default for test ",
		Value: "root",
	}

	rootPassword := cli.StringFlag{
		Name:  "rootPassword",
		Usage: "password required for schema modification; has default for test ",
		Value: "dbRootPassword",
	}

	seedCount := cli.IntFlag{
		Name:  "count",
		Usage: "number of contacts to generate",
		Value: 1000,
	}

	seedValue := cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed so generated datasets are reproducible",
		Value: 42,
	}

	app.Commands = []cli.Command{
		{
			Name:  "init",
			Usage: "Connect and initialize the database schema",
			Flags: []cli.Flag{confFlag, force, rootPassword, rootUser},
			Action: func(clictx *cli.Context) error {
				fmt.Println("Initializing database.")
				err := initialize(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "Print status for configured database",
			Flags: []cli.Flag{confFlag},
			Action: func(clictx *cli.Context) error {
				fmt.Println("Checking DB status.")
				err := status(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply (up) or roll back one (down) schema migration",
			Flags: []cli.Flag{confFlag, rootPassword, rootUser},
			Action: func(clictx *cli.Context) error {
				err := runMigrate(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
		{
			Name:  "seed",
			Usage: "Populate the database with generated contacts",
			Flags: []cli.Flag{confFlag, seedCount, seedValue},
			Action: func(clictx *cli.Context) error {
				err := seed(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
	}

	// Global flags. Used when no "command" passed. Must be repeated above for commands.
	app.Flags = []cli.Flag{
		confFlag,
	}

	// There is no "default" command. Print help and exit.
	app.Action = func(clictx *cli.Context) error {
		fmt.Printf("Must specify command. Run `%s help` for info", app.Name)
		return nil
	}

	app.Run(os.Args)
}

// initialize applies the full set of migrations to an empty database. Root
// creds are required.
func initialize(clictx *cli.Context) error {

	conf, err := cliConfig(clictx)
	if err != nil {
		return err
	}
	conf.DatabaseConnection.Username = clictx.String("rootUser")
	conf.DatabaseConnection.Password = clictx.String("rootPassword")

	fmt.Println("connecting to db")
	db, err := newDBConn(conf.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("could not connect to db: %v", err)
	}
	defer db.Close()

	force := clictx.Bool("force")
	fmt.Println("force schema creation:", force)

	if !isDBEmpty(db) && !force {
		return errors.New("Database is not empty. Please review which DB you're connecting to or run with --force=true.")
	}
	fmt.Println("DB is ready to receive schema")
	applied, err := migrateUp(db, conf.DatabaseConnection.Driver)
	if err != nil {
		return err
	}
	fmt.Printf("schema created, %d migrations applied\n", applied)
	return nil
}

// status reports on the status of the DB given the credentials provided.
func status(clictx *cli.Context) error {

	conf, err := cliConfig(clictx)
	if err != nil {
		return err
	}

	db, err := newDBConn(conf.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("could not create db connection: %v", err)
	}
	defer db.Close()

	if isDBEmpty(db) {
		fmt.Println("database is empty")
		return nil
	}
	fmt.Println("database is not empty")
	if err := printMigrationRecords(db, conf.DatabaseConnection.Driver); err != nil {
		return err
	}
	var contacts int64
	if err := db.Get(&contacts, `select count(0) from appuser`); err != nil {
		return err
	}
	fmt.Println("contacts:", contacts)
	return nil
}

// runMigrate dispatches migrate up and migrate down.
func runMigrate(clictx *cli.Context) error {

	conf, err := cliConfig(clictx)
	if err != nil {
		return err
	}
	conf.DatabaseConnection.Username = clictx.String("rootUser")
	conf.DatabaseConnection.Password = clictx.String("rootPassword")

	db, err := newDBConn(conf.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("could not connect to db: %v", err)
	}
	defer db.Close()

	switch clictx.Args().First() {
	case "up":
		applied, err := migrateUp(db, conf.DatabaseConnection.Driver)
		if err != nil {
			return err
		}
		fmt.Printf("%d migrations applied\n", applied)
	case "down":
		rolledback, err := migrateDown(db, conf.DatabaseConnection.Driver)
		if err != nil {
			return err
		}
		fmt.Printf("%d migrations rolled back\n", rolledback)
	default:
		return errors.New("migrate requires a direction, up or down")
	}
	return nil
}

// cliConfig resolves the conf flag to an AppConfiguration, falling back to
// the containerized test defaults when no file is named.
func cliConfig(clictx *cli.Context) (config.AppConfiguration, error) {
	path := clictx.String("conf")
	if path == "" {
		return defaultConfig, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config.AppConfiguration{}, fmt.Errorf("path error: %v", err)
	}
	return config.LoadYAMLConfig(absPath)
}

// newDBConn provides a database connection with the given config, waiting for
// the database to come up. For a root connection, set Username and Password
// directly on the conf.
func newDBConn(conf config.DatabaseConfiguration) (*sqlx.DB, error) {

	db, err := conf.GetDatabaseHandle()
	if err != nil {
		return nil, err
	}
	tries := 10
	for i := 0; i < tries; i++ {
		if err := db.Ping(); err != nil {
			fmt.Printf("could not ping db: %v\n", err)
			time.Sleep(2 * time.Second)
		} else {
			fmt.Println("database connection established")
			break
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping db: %v", err)
	}
	return db, nil
}

// isDBEmpty tries to find table "appuser". If it exists, the schema is
// already initialized.
func isDBEmpty(db *sqlx.DB) bool {

	fmt.Println("performing schema check")
	var name []string
	stmt := `select table_name from information_schema.tables where table_name = 'appuser'`
	err := db.Select(&name, stmt)
	if err != nil {
		log.Println("could not do query:", err)
		return false
	}
	if len(name) == 0 {
		fmt.Println("db returned no results when querying for expected tables")
		return true
	}
	return name[0] != "appuser"
}
