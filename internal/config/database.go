package config

import (
	"database/sql"
	"net/url"
	"time"
)

// connectionPragmas are applied by the driver to every new connection.
var connectionPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"cache_size(10000)",
	"temp_store(MEMORY)",
}

// BuildDSN returns a modernc.org/sqlite DSN for path. Transactions start with
// BEGIN IMMEDIATE so a reader that later writes holds the write lock throughout.
func BuildDSN(path string) string {
	q := url.Values{}
	for _, p := range connectionPragmas {
		q.Add("_pragma", p)
	}
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// OptimizeDatabaseConnection applies connection pool settings
func OptimizeDatabaseConnection(db *sql.DB) {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}
