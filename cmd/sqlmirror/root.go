package main

import (
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"github.com/spf13/cobra"

	"github.com/sqlmirror/sqlmirror"
	"github.com/sqlmirror/sqlmirror/internal/cli"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile    string
	flagDB     string
	flagDriver string
	flagDir    string
	flagTable  string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "sqlmirror",
	Short: "Versioned SQL schema migrations",
	Long: `sqlmirror - versioned SQL schema migrations

sqlmirror renders matched up and down SQL scripts from declarative schema
descriptions and applies them in version order, tracking progress in a
ledger table.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: auto-discover sqlmirror.yaml)")
	pf.StringVar(&flagDB, "db", "", "database URL (or SQLite file)")
	pf.StringVar(&flagDriver, "driver", "", "database driver: pg or sqlite3")
	pf.StringVar(&flagDir, "dir", "", "migrations directory")
	pf.StringVar(&flagTable, "table", "", "ledger table name")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// migratorConfig builds the library configuration from flags and file
// config.
func migratorConfig() sqlmirror.Config {
	return sqlmirror.Config{
		Driver:            resolveString(flagDriver, cfg.Database.Driver),
		TableName:         resolveString(flagTable, cfg.Migrations.Table),
		Dir:               resolveString(flagDir, cfg.Migrations.Dir),
		Loader:            sqlmirror.NewYAMLLoader(),
		Newline:           cfg.Migrations.Newline,
		ValidateChecksums: cfg.Migrations.ValidateChecksums,
	}
}

// openMigrator connects to the configured database and builds a Migrator.
func openMigrator() (*sqlmirror.Migrator, *sql.DB, error) {
	url := resolveString(flagDB, cfg.Database.URL)
	if url == "" {
		return nil, nil, cli.ConfigError("database URL is required (use --db or set database.url in config)", nil)
	}

	mcfg := migratorConfig()
	driverName := "pgx"
	if strings.ToLower(mcfg.Driver) == "sqlite3" {
		driverName = "sqlite3"
	}

	db, err := sql.Open(driverName, url)
	if err != nil {
		return nil, nil, cli.DBConnectError("connecting to database", err)
	}

	m, err := sqlmirror.NewMigrator(mcfg, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, cli.ConfigError("configuring migrator", err)
	}
	return m, db, nil
}
