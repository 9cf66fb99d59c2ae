package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmirror/sqlmirror"
	"github.com/sqlmirror/sqlmirror/internal/cli"
)

var createName string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Scaffold the next migration",
	Long: `Scaffold up/down/config files for the next major version after the
highest version on disk, starting at 1.0.0 when none exist.`,
	Example: `  sqlmirror create --name "add users"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := sqlmirror.CreateMigration(migratorConfig(), createName)
		if err != nil {
			return cli.GeneralError("creating migration", err)
		}
		if !quiet {
			fmt.Println("created", files.Up)
			fmt.Println("created", files.Down)
			fmt.Println("created", files.Config)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "human-readable migration name")
	_ = createCmd.MarkFlagRequired("name")
}
