// Package cli wires the catalog commands: serve, migrate and links.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/catalog/internal/config"
	"github.com/jbweber/homelab/catalog/internal/logging"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	envFiles  []string
	dbPath    string
	logLevel  string
	logFormat string
}

// NewRootCommand builds the catalog command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Film catalog service",
		Long: `Catalog serves actors, films and their reference data over HTTP and
manages the many-to-many links between them.

Configuration comes from CATALOG_* environment variables, optionally loaded
from a .env file. Flags override the environment.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default ./.env when present)")
	flags.StringVar(&opts.dbPath, "db", "", "database path (overrides CATALOG_DB_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides CATALOG_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format json|console (overrides CATALOG_LOG_FORMAT)")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newLinksCommand(opts),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// load resolves configuration and builds the logger.
func (o *options) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return nil, nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
	}
}
