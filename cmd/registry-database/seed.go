package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/urfave/cli"

	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/metadata/models"
)

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael",
	"Linda", "William", "Elizabeth", "David", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Ada",
	"Grace", "Alan", "Edsger", "Donald", "Margaret", "Dennis", "Ken",
	"Barbara", "Niklaus", "Tony", "Leslie", "Frances", "Jean", "Radia",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lovelace", "Hopper", "Turing", "Dijkstra", "Knuth", "Hamilton",
	"Ritchie", "Thompson", "Liskov", "Wirth", "Hoare", "Lamport", "Allen",
	"Bartik", "Perlman",
}

var streets = []string{
	"Main Street", "Oak Avenue", "Maple Drive", "Cedar Lane", "Park Road",
	"Washington Boulevard", "Lake View", "Hill Street", "River Road",
	"Church Street", "High Street", "Station Road", "Mill Lane",
	"Victoria Road", "Kings Road", "Springfield Avenue", "Elm Street",
}

// cities pair with their country so generated addresses stay plausible.
var cities = []struct {
	city    string
	country string
}{
	{"Springfield", "United States of America"},
	{"Arlington", "United States of America"},
	{"Georgetown", "United States of America"},
	{"Birmingham", "United Kingdom"},
	{"Reading", "United Kingdom"},
	{"Worthing", "United Kingdom"},
	{"Toronto", "Canada"},
	{"Kingston", "Canada"},
	{"Berlin", "Germany"},
	{"Hamburg", "Germany"},
	{"Paris", "France"},
	{"Lyon", "France"},
	{"Sydney", "Australia"},
	{"Wellington", "New Zealand"},
	{"Dublin", "Ireland"},
	{"Amsterdam", "Netherlands"},
}

var genders = []string{"M", "F", "O"}

// seed generates contacts through the same data access layer the server
// uses. The random source is seeded from the --seed flag so repeated runs
// against an empty database produce the same dataset.
func seed(clictx *cli.Context) error {

	conf, err := cliConfig(clictx)
	if err != nil {
		return err
	}

	count := clictx.Int("count")
	rng := rand.New(rand.NewSource(clictx.Int64("seed")))

	// wait for the database to come up before handing off to the dao
	db, err := newDBConn(conf.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("could not connect to db: %v", err)
	}
	db.Close()

	d, dbID, err := dao.NewDataAccessLayer(conf.DatabaseConnection)
	if err != nil {
		return fmt.Errorf("could not build data access layer: %v", err)
	}
	defer d.MetadataDB.Close()
	fmt.Println("seeding database instance", dbID, "with", count, "contacts")

	created := 0
	withAddress := 0
	withRelationship := 0
	start := time.Now()
	for i := 0; i < count; i++ {
		contact := generateContact(rng)

		// roughly nine in ten contacts have a known address
		if rng.Intn(10) < 9 {
			address := generateAddress(rng)
			dbAddress, err := d.CreateAddress(&address)
			if err != nil {
				return fmt.Errorf("could not create address %d: %v", i, err)
			}
			contact.AddressID = models.ToNullInt64(dbAddress.ID)
			withAddress++
		}

		dbContact, err := d.CreateContact(&contact)
		if err != nil {
			return fmt.Errorf("could not create contact %d: %v", i, err)
		}

		// and roughly 85 percent are enrolled in the loyalty program
		if rng.Intn(100) < 85 {
			relationship := models.CustomerRelationship{
				AppUserID: dbContact.ID,
				Points:    int64(rng.Intn(10000)),
				Created:   randomPastTime(rng, 5*365),
			}
			if _, err := d.CreateCustomerRelationship(&relationship); err != nil {
				return fmt.Errorf("could not create relationship for contact %d: %v", dbContact.ID, err)
			}
			withRelationship++
		}
		created++
		if created%500 == 0 {
			fmt.Printf("  %d contacts created\n", created)
		}
	}
	fmt.Printf("done. contacts: %d, with address: %d, with relationship: %d, elapsed: %s\n",
		created, withAddress, withRelationship, time.Since(start).Round(time.Millisecond))
	return nil
}

func generateContact(rng *rand.Rand) models.AppUser {
	contact := models.AppUser{
		FirstName: firstNames[rng.Intn(len(firstNames))],
		LastName:  lastNames[rng.Intn(len(lastNames))],
		Created:   randomPastTime(rng, 5*365),
	}
	// some records omit the optional attributes
	if rng.Intn(10) < 9 {
		contact.Gender = models.ToNullString(genders[rng.Intn(len(genders))])
	}
	if rng.Intn(10) < 8 {
		contact.PhoneNumber = models.ToNullString(randomPhoneNumber(rng))
	}
	if rng.Intn(10) < 7 {
		age := 18 + rng.Intn(70)
		contact.Birthday = models.ToNullTime(randomPastTime(rng, 365*age))
	}
	return contact
}

func generateAddress(rng *rand.Rand) models.Address {
	place := cities[rng.Intn(len(cities))]
	return models.Address{
		Street:       streets[rng.Intn(len(streets))],
		StreetNumber: fmt.Sprintf("%d", 1+rng.Intn(9999)),
		CityCode:     fmt.Sprintf("%05d", rng.Intn(100000)),
		City:         place.city,
		Country:      place.country,
	}
}

func randomPhoneNumber(rng *rand.Rand) string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", 200+rng.Intn(800), rng.Intn(1000), rng.Intn(10000))
}

// randomPastTime yields a time up to maxDays in the past, truncated to the
// second so values round trip through both database drivers.
func randomPastTime(rng *rand.Rand, maxDays int) time.Time {
	offset := time.Duration(rng.Int63n(int64(maxDays)*24)) * time.Hour
	offset += time.Duration(rng.Intn(3600)) * time.Second
	return time.Now().UTC().Add(-offset).Truncate(time.Second)
}
