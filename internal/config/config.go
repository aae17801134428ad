package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/jbweber/homelab/catalog/internal/datastore"
)

// Config holds all configuration for the catalog service
type Config struct {
	DBPath          string        `env:"CATALOG_DB_PATH" envDefault:"~/catalog/data/catalog.db"`
	Port            string        `env:"CATALOG_PORT" envDefault:"8080"`
	LogLevel        string        `env:"CATALOG_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CATALOG_LOG_FORMAT" envDefault:"json"`
	CacheTTL        time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"CATALOG_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	cfg := &Config{}
	// An empty environment yields the envDefault values; that cannot fail.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// Load reads the given dotenv files (or ./.env when present) into the process
// environment and then parses Config from it. Variables already set in the
// environment win over dotenv values.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env cannot check on its own.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("CATALOG_DB_PATH must not be empty")
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("CATALOG_PORT must not be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("CATALOG_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// DSN returns the SQLite connection string for the configured database file.
func (c *Config) DSN() string {
	return BuildDSN(c.expandPath(c.DBPath))
}

// InitializeDatabase creates and configures the database connection
func (c *Config) InitializeDatabase() (*datastore.Datastore, error) {
	dbPath := c.expandPath(c.DBPath)

	// Ensure database directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open(datastore.DriverName, BuildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	OptimizeDatabaseConnection(db.DB)

	ds := datastore.Wrap(db, nil)
	if err := ds.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return ds, nil
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}
