package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmirror/sqlmirror/internal/cli"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	Long:  `Revert exactly the most-recently-applied migration. Run repeatedly to unwind one version at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, db, err := openMigrator()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		reverted, err := m.Down(context.Background())
		if err != nil {
			return cli.MigrationError("revert failed", err)
		}
		if !quiet {
			fmt.Printf("reverted %s (version %s)\n", reverted.Filename, reverted.Version)
		}
		return nil
	},
}
