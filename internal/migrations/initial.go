package migrations

import (
	"database/sql"
)

const lastUpdateColumn = `last_update TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))`

// GetInitialMigrations returns the migrations that create the catalog schema
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_reference_tables",
			Up: func(tx *sql.Tx) error {
				return execAll(tx,
					`CREATE TABLE language (
						language_id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL UNIQUE,
						`+lastUpdateColumn+`
					)`,
					`CREATE TABLE category (
						category_id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL UNIQUE,
						`+lastUpdateColumn+`
					)`,
					`CREATE TABLE country (
						country_id INTEGER PRIMARY KEY AUTOINCREMENT,
						country TEXT NOT NULL,
						`+lastUpdateColumn+`
					)`,
					`CREATE TABLE city (
						city_id INTEGER PRIMARY KEY AUTOINCREMENT,
						city TEXT NOT NULL,
						country_id INTEGER NOT NULL,
						`+lastUpdateColumn+`,
						FOREIGN KEY (country_id) REFERENCES country(country_id)
					)`,
				)
			},
			Down: func(tx *sql.Tx) error {
				// Reverse order for foreign keys
				return execAll(tx,
					`DROP TABLE IF EXISTS city`,
					`DROP TABLE IF EXISTS country`,
					`DROP TABLE IF EXISTS category`,
					`DROP TABLE IF EXISTS language`,
				)
			},
		},
		{
			Version: 2,
			Name:    "create_film_tables",
			Up: func(tx *sql.Tx) error {
				return execAll(tx,
					`CREATE TABLE actor (
						actor_id INTEGER PRIMARY KEY AUTOINCREMENT,
						first_name TEXT NOT NULL,
						last_name TEXT NOT NULL,
						`+lastUpdateColumn+`
					)`,
					`CREATE TABLE film (
						film_id INTEGER PRIMARY KEY AUTOINCREMENT,
						title TEXT NOT NULL,
						description TEXT,
						release_year INTEGER,
						language_id INTEGER NOT NULL,
						original_language_id INTEGER,
						rental_duration INTEGER NOT NULL DEFAULT 3,
						rental_rate REAL NOT NULL DEFAULT 4.99,
						length INTEGER,
						replacement_cost REAL NOT NULL DEFAULT 19.99,
						rating TEXT NOT NULL DEFAULT 'G' CHECK (rating IN ('G', 'PG', 'PG-13', 'R', 'NC-17')),
						`+lastUpdateColumn+`,
						FOREIGN KEY (language_id) REFERENCES language(language_id),
						FOREIGN KEY (original_language_id) REFERENCES language(language_id)
					)`,
					// One row per link; the primary key rejects duplicates.
					`CREATE TABLE film_actor (
						actor_id INTEGER NOT NULL,
						film_id INTEGER NOT NULL,
						`+lastUpdateColumn+`,
						PRIMARY KEY (actor_id, film_id),
						FOREIGN KEY (actor_id) REFERENCES actor(actor_id),
						FOREIGN KEY (film_id) REFERENCES film(film_id)
					)`,
					`CREATE TABLE film_category (
						film_id INTEGER NOT NULL,
						category_id INTEGER NOT NULL,
						`+lastUpdateColumn+`,
						PRIMARY KEY (film_id, category_id),
						FOREIGN KEY (film_id) REFERENCES film(film_id),
						FOREIGN KEY (category_id) REFERENCES category(category_id)
					)`,
				)
			},
			Down: func(tx *sql.Tx) error {
				return execAll(tx,
					`DROP TABLE IF EXISTS film_category`,
					`DROP TABLE IF EXISTS film_actor`,
					`DROP TABLE IF EXISTS film`,
					`DROP TABLE IF EXISTS actor`,
				)
			},
		},
	}
}
