package sqlmirror

import (
	"context"
	"database/sql"
	"fmt"
)

// Sqlite3Client implements Client for SQLite.
type Sqlite3Client struct {
	baseClient
}

// NewSqlite3Client creates a new Sqlite3Client.
func NewSqlite3Client(cfg Config, db *sql.DB) *Sqlite3Client {
	return &Sqlite3Client{baseClient{table: cfg.TableName, db: db}}
}

// HasLedgerTable probes sqlite_master for the ledger table.
func (c *Sqlite3Client) HasLedgerTable(ctx context.Context) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`,
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

func (c *Sqlite3Client) CreateLedgerTable(ctx context.Context) error {
	ddl := sqlf(`
		CREATE TABLE IF NOT EXISTS %s (
		  %s_id INTEGER PRIMARY KEY AUTOINCREMENT,
		  version TEXT UNIQUE NOT NULL,
		  name TEXT UNIQUE NOT NULL,
		  filename TEXT UNIQUE NOT NULL,
		  checksum TEXT NOT NULL,
		  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`, c.table, c.table)
	_, err := c.db.ExecContext(ctx, ddl)
	return err
}

func (c *Sqlite3Client) LastApplied(ctx context.Context) (LedgerRow, bool, error) {
	return c.lastApplied(ctx, c.lastAppliedSQL())
}

func (c *Sqlite3Client) AppliedVersions(ctx context.Context) (map[string]LedgerRow, error) {
	return c.appliedVersions(ctx, c.selectAllSQL())
}

func (c *Sqlite3Client) InsertRow(ctx context.Context, tx *sql.Tx, row LedgerRow) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (version, name, filename, checksum) VALUES (?, ?, ?, ?)", c.table),
		row.Version, row.Name, row.Filename, row.Checksum,
	)
	return err
}

func (c *Sqlite3Client) DeleteRow(ctx context.Context, tx *sql.Tx, version string) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE version = ?", c.table),
		version,
	)
	return err
}
