package migrations

import (
	"database/sql"
)

var performanceIndices = map[string]string{
	"idx_actor_last_name":      "actor(last_name)",
	"idx_film_title":           "film(title)",
	"idx_film_language_id":     "film(language_id)",
	"idx_film_actor_film_id":   "film_actor(film_id)",
	"idx_film_category_cat_id": "film_category(category_id)",
	"idx_city_country_id":      "city(country_id)",
}

// GetPerformanceMigrations returns lookup indices for search and reverse link reads
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 10,
			Name:    "add_performance_indices",
			Up: func(tx *sql.Tx) error {
				for name, target := range performanceIndices {
					if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS " + name + " ON " + target); err != nil {
						return err
					}
				}
				return nil
			},
			Down: func(tx *sql.Tx) error {
				for name := range performanceIndices {
					if _, err := tx.Exec("DROP INDEX IF EXISTS " + name); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
