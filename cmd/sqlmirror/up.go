package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmirror/sqlmirror/internal/cli"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long:  `Apply every pending migration in ascending version order.`,
	Example: `  # Apply pending migrations
  sqlmirror up --db postgres://localhost/mydb

  # Against a local SQLite database
  sqlmirror up --driver sqlite3 --db ./dev.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, db, err := openMigrator()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		applied, err := m.Up(context.Background())
		for _, row := range applied {
			if !quiet {
				fmt.Printf("applied %s (version %s)\n", row.Filename, row.Version)
			}
		}
		if err != nil {
			return cli.MigrationError("migration failed", err)
		}
		if !quiet && len(applied) == 0 {
			fmt.Println("Nothing to apply; ledger is up to date.")
		}
		return nil
	},
}
