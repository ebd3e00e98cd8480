// Package insightstest builds file-backed SQLite customer databases for
// tests.
package insightstest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"
)

const schema = `
CREATE TABLE race (code TEXT PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE education (id INTEGER PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE insurance_segment (id INTEGER PRIMARY KEY, value TEXT NOT NULL);
CREATE TABLE customer (
	customer_id INTEGER PRIMARY KEY,
	gender TEXT,
	income REAL,
	travel_spending REAL,
	sports_leisure_spending REAL,
	economic_stability INTEGER,
	state TEXT,
	youtube_user_rank TEXT,
	facebook_user_rank TEXT,
	race_code TEXT,
	education_id INTEGER,
	insurance_segment_id INTEGER,
	home_owner INTEGER
);
INSERT INTO race (code, value) VALUES ('A', 'Asian'), ('B', 'Black'), ('H', 'Hispanic'), ('W', 'White');
INSERT INTO education (id, value) VALUES (1, 'High School'), (2, 'Bachelor'), (3, 'Graduate');
INSERT INTO insurance_segment (id, value) VALUES (1, 'Low'), (2, 'Medium'), (3, 'High');
`

// Customer is one row of the customer table. EducationID 0 is stored as
// NULL so left joins can be exercised.
type Customer struct {
	Gender                string
	Income                float64
	TravelSpending        float64
	SportsLeisureSpending float64
	EconomicStability     int
	State                 string
	YoutubeRank           string
	FacebookRank          string
	RaceCode              string
	EducationID           int
	InsuranceSegmentID    int
	HomeOwner             int
}

// Sample is a small mixed data set covering every filter column.
func Sample() []Customer {
	return []Customer{
		{"F", 72000, 1200, 300, 3, "CA", "12", "40", "A", 3, 2, 1},
		{"F", 51000, 800, 150, 2, "CA", "30", "22", "W", 2, 1, 0},
		{"F", 64000, 950, 410, 2, "NY", "8", "15", "H", 2, 3, 1},
		{"M", 88000, 2000, 620, 4, "CA", "5", "9", "W", 3, 3, 1},
		{"M", 43000, 300, 90, 1, "TX", "44", "51", "B", 1, 1, 0},
		{"M", 39000, 250, 120, 1, "TX", "50", "60", "H", 0, 2, 0},
		{"U", 60000, 700, 200, 2, "NY", "19", "27", "W", 2, 2, 1},
	}
}

// DB is a seeded database: Client is opened read-only the way the service
// opens it; Admin is a writable handle for arranging failures.
type DB struct {
	Client *database.Client
	Admin  *sql.DB
	Path   string
}

// New creates a database in t.TempDir() holding the lookup tables and the
// given customers.
func New(t testing.TB, customers []Customer) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recruit.db")

	admin, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	t.Cleanup(func() { admin.Close() })

	if _, err := admin.Exec(schema); err != nil {
		t.Fatalf("creating fixture schema: %v", err)
	}
	Insert(t, admin, customers...)

	client, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   path,
	})
	if err != nil {
		t.Fatalf("opening fixture client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return &DB{Client: client, Admin: admin, Path: path}
}

// Insert adds customers through a writable handle.
func Insert(t testing.TB, admin *sql.DB, customers ...Customer) {
	t.Helper()
	for _, c := range customers {
		var educationID any
		if c.EducationID != 0 {
			educationID = c.EducationID
		}
		_, err := admin.Exec(`INSERT INTO customer (
			gender, income, travel_spending, sports_leisure_spending, economic_stability, state,
			youtube_user_rank, facebook_user_rank, race_code, education_id, insurance_segment_id, home_owner
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Gender, c.Income, c.TravelSpending, c.SportsLeisureSpending, c.EconomicStability, c.State,
			c.YoutubeRank, c.FacebookRank, c.RaceCode, educationID, c.InsuranceSegmentID, c.HomeOwner,
		)
		if err != nil {
			t.Fatalf("inserting fixture customer: %v", err)
		}
	}
}

// Exec runs a statement through the writable handle, e.g. to drop a table.
func (d *DB) Exec(t testing.TB, stmt string) {
	t.Helper()
	if _, err := d.Admin.Exec(stmt); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}
