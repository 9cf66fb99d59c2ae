package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlmirror/sqlmirror"
	"github.com/sqlmirror/sqlmirror/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger state and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, db, err := openMigrator()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		ctx := context.Background()
		state, err := m.State(ctx)
		if err != nil {
			return cli.GeneralError("reading ledger state", err)
		}

		switch state.State {
		case sqlmirror.StateNoTable:
			fmt.Println("Ledger table:  not created")
		case sqlmirror.StateNoneApplied:
			fmt.Println("Ledger table:  present, no migrations applied")
		case sqlmirror.StateApplied:
			fmt.Printf("Applied head:  %s (%s)\n", state.Last.Version, state.Last.Filename)
		}

		pending, err := m.Pending(ctx)
		if err != nil {
			return cli.GeneralError("computing pending migrations", err)
		}
		fmt.Printf("Pending:       %d\n", len(pending))
		for _, id := range pending {
			fmt.Printf("  - %s %s\n", id.Version, id.Name)
		}
		return nil
	},
}
