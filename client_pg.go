package sqlmirror

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresClient implements Client for PostgreSQL.
type PostgresClient struct {
	baseClient
}

// NewPostgresClient creates a new PostgresClient.
func NewPostgresClient(cfg Config, db *sql.DB) *PostgresClient {
	return &PostgresClient{baseClient{table: cfg.TableName, db: db}}
}

// HasLedgerTable probes the catalog for the ledger table in the current
// schema.
func (c *PostgresClient) HasLedgerTable(ctx context.Context) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`,
		c.table,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateLedgerTable renders the ledger DDL through the same table renderer
// user tables go through, with the generated uuid id swapped for a serial.
func (c *PostgresClient) CreateLedgerTable(ctx context.Context) error {
	chunk := RenderTable(c.table, []string{
		c.table + "_id serial PRIMARY KEY",
		"version varchar(64) UNIQUE NOT NULL",
		"name varchar(255) UNIQUE NOT NULL",
		"filename varchar(255) UNIQUE NOT NULL",
		"checksum varchar(64) NOT NULL",
		"created_at timestamp NOT NULL DEFAULT now()",
	}, TableOptions{DisableID: true})
	_, err := c.db.ExecContext(ctx, chunk.Up)
	return err
}

func (c *PostgresClient) LastApplied(ctx context.Context) (LedgerRow, bool, error) {
	return c.lastApplied(ctx, c.lastAppliedSQL())
}

func (c *PostgresClient) AppliedVersions(ctx context.Context) (map[string]LedgerRow, error) {
	return c.appliedVersions(ctx, c.selectAllSQL())
}

func (c *PostgresClient) InsertRow(ctx context.Context, tx *sql.Tx, row LedgerRow) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (version, name, filename, checksum) VALUES ($1, $2, $3, $4)", c.table),
		row.Version, row.Name, row.Filename, row.Checksum,
	)
	return err
}

func (c *PostgresClient) DeleteRow(ctx context.Context, tx *sql.Tx, version string) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE version = $1", c.table),
		version,
	)
	return err
}
