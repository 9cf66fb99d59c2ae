package sqlmirror

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// LedgerRow is one persisted record of an applied migration. Rows are
// inserted only by a successful up application and deleted only by a
// successful down reversion of that exact version; the row with the highest
// id is the currently-applied head.
type LedgerRow struct {
	ID        int64
	Version   string
	Name      string
	Filename  string
	Checksum  string
	CreatedAt time.Time
}

// Client supplies the SQL dialect differences for the ledger table. The
// assembled migration documents are always Postgres dialect; the ledger
// itself can additionally live in SQLite for local development and tests.
//
// InsertRow and DeleteRow run on the caller's transaction so the migration
// script and its ledger write succeed or fail together.
type Client interface {
	HasLedgerTable(ctx context.Context) (bool, error)
	CreateLedgerTable(ctx context.Context) error
	LastApplied(ctx context.Context) (LedgerRow, bool, error)
	AppliedVersions(ctx context.Context) (map[string]LedgerRow, error)
	InsertRow(ctx context.Context, tx *sql.Tx, row LedgerRow) error
	DeleteRow(ctx context.Context, tx *sql.Tx, version string) error
}

// NewClient creates a ledger client for the configured driver.
func NewClient(cfg Config, db *sql.DB) (Client, error) {
	switch strings.ToLower(cfg.Driver) {
	case "pg":
		return NewPostgresClient(cfg, db), nil
	case "sqlite3":
		return NewSqlite3Client(cfg, db), nil
	default:
		return nil, fmt.Errorf("db driver '%s' not supported. Must be one of: sqlite3 or pg", cfg.Driver)
	}
}

// baseClient holds what both dialects share and the row scanning logic.
type baseClient struct {
	table string
	db    *sql.DB
}

func (c *baseClient) lastApplied(ctx context.Context, query string) (LedgerRow, bool, error) {
	var row LedgerRow
	err := c.db.QueryRowContext(ctx, query).Scan(
		&row.ID, &row.Version, &row.Name, &row.Filename, &row.Checksum, &row.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return LedgerRow{}, false, nil
	}
	if err != nil {
		return LedgerRow{}, false, err
	}
	return row, true, nil
}

func (c *baseClient) appliedVersions(ctx context.Context, query string) (map[string]LedgerRow, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]LedgerRow)
	for rows.Next() {
		var row LedgerRow
		if err := rows.Scan(&row.ID, &row.Version, &row.Name, &row.Filename, &row.Checksum, &row.CreatedAt); err != nil {
			return nil, err
		}
		applied[row.Version] = row
	}
	return applied, rows.Err()
}

func (c *baseClient) selectAllSQL() string {
	return fmt.Sprintf(
		"SELECT %s_id, version, name, filename, checksum, created_at FROM %s",
		c.table, c.table,
	)
}

func (c *baseClient) lastAppliedSQL() string {
	return c.selectAllSQL() + fmt.Sprintf(" ORDER BY %s_id DESC LIMIT 1", c.table)
}
