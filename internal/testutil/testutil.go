package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jbweber/homelab/catalog/internal/datastore"
)

// NewTestDSN generates a DSN for an in-memory SQLite database for testing purposes.
// Foreign keys and immediate transactions match the production settings.
func NewTestDSN(testName string) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(testName)
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_txlock=immediate", name)
}

// SetupTestDB opens a migrated in-memory datastore named after the test.
// It is closed when the test finishes.
func SetupTestDB(t *testing.T) *datastore.Datastore {
	t.Helper()
	ds, err := datastore.New(NewTestDSN(t.Name()))
	if err != nil {
		t.Fatalf("failed to open test datastore: %v", err)
	}
	t.Cleanup(func() {
		if err := ds.Close(); err != nil {
			t.Logf("Warning: failed to close test datastore: %v", err)
		}
	})
	return ds
}

func insert(t *testing.T, ds *datastore.Datastore, query string, args ...any) int64 {
	t.Helper()
	res, err := ds.DB.Exec(query, args...)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return id
}

// SeedLanguage inserts a language and returns its id.
func SeedLanguage(t *testing.T, ds *datastore.Datastore, name string) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO language (name) VALUES (?)", name)
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(t *testing.T, ds *datastore.Datastore, name string) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO category (name) VALUES (?)", name)
}

// SeedCountry inserts a country and returns its id.
func SeedCountry(t *testing.T, ds *datastore.Datastore, name string) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO country (country) VALUES (?)", name)
}

// SeedCity inserts a city in countryID and returns its id.
func SeedCity(t *testing.T, ds *datastore.Datastore, name string, countryID int64) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO city (city, country_id) VALUES (?, ?)", name, countryID)
}

// SeedActor inserts an actor and returns its id.
func SeedActor(t *testing.T, ds *datastore.Datastore, first, last string) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO actor (first_name, last_name) VALUES (?, ?)", first, last)
}

// SeedFilm inserts a film with the given rating and returns its id.
func SeedFilm(t *testing.T, ds *datastore.Datastore, title string, languageID int64, rating string) int64 {
	t.Helper()
	return insert(t, ds, "INSERT INTO film (title, language_id, rating) VALUES (?, ?, ?)", title, languageID, rating)
}

// LinkActorFilm inserts a film_actor row.
func LinkActorFilm(t *testing.T, ds *datastore.Datastore, actorID, filmID int64) {
	t.Helper()
	if _, err := ds.DB.Exec("INSERT INTO film_actor (actor_id, film_id) VALUES (?, ?)", actorID, filmID); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

// LinkFilmCategory inserts a film_category row.
func LinkFilmCategory(t *testing.T, ds *datastore.Datastore, filmID, categoryID int64) {
	t.Helper()
	if _, err := ds.DB.Exec("INSERT INTO film_category (film_id, category_id) VALUES (?, ?)", filmID, categoryID); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

// ActorFilmIDs returns the film ids linked to actorID, ascending.
func ActorFilmIDs(t *testing.T, ds *datastore.Datastore, actorID int64) []int64 {
	t.Helper()
	ids := []int64{}
	if err := ds.DB.Select(&ids, "SELECT film_id FROM film_actor WHERE actor_id = ? ORDER BY film_id", actorID); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return ids
}
