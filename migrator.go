package sqlmirror

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds settings for a Migrator.
type Config struct {
	// Driver selects the ledger dialect, "pg" or "sqlite3".
	Driver string

	// TableName is the name of the migration ledger table.
	TableName string

	// Dir is the directory holding migration files.
	Dir string

	// Loader resolves per-migration config documents. When a migration has
	// one, its SQL file is regenerated from it before execution. Nil disables
	// regeneration entirely.
	Loader ConfigLoader

	// Newline normalizes line endings ("LF", "CR" or "CRLF") before
	// checksumming. Empty means checksum files as-is.
	Newline string

	// ValidateChecksums re-verifies already-applied migrations against their
	// ledger checksums before applying anything new.
	ValidateChecksums bool
}

// DefaultConfig provides default values for configuration.
var DefaultConfig = Config{
	TableName:         "sqlmirror_migration",
	ValidateChecksums: true,
}

// TableState classifies the migration ledger for lifecycle branching.
type TableState int

const (
	// StateNoTable means the ledger table has never been created.
	StateNoTable TableState = iota
	// StateNoneApplied means the ledger exists but holds no rows.
	StateNoneApplied
	// StateApplied means at least one migration has been applied.
	StateApplied
)

// LedgerState is the derived state of the ledger: which branch of the
// lifecycle applies, and the currently-applied head when there is one.
type LedgerState struct {
	State TableState
	Last  LedgerRow // valid only when State == StateApplied
}

// Migrator reconciles on-disk migration files against the database ledger
// and applies or reverts them transactionally.
//
// A Migrator performs one logical workflow at a time; it takes no advisory
// lock, so concurrent invocations against the same database must be
// serialized by the caller.
type Migrator struct {
	cfg    Config
	db     *sql.DB
	client Client
}

// NewMigrator creates a Migrator with the provided configuration and
// database connection.
func NewMigrator(cfg Config, db *sql.DB) (*Migrator, error) {
	if cfg.TableName == "" {
		cfg.TableName = DefaultConfig.TableName
	}
	client, err := NewClient(cfg, db)
	if err != nil {
		return nil, err
	}
	return &Migrator{cfg: cfg, db: db, client: client}, nil
}

// State probes the ledger and classifies it.
func (m *Migrator) State(ctx context.Context) (LedgerState, error) {
	has, err := m.client.HasLedgerTable(ctx)
	if err != nil {
		return LedgerState{}, err
	}
	if !has {
		return LedgerState{State: StateNoTable}, nil
	}
	last, ok, err := m.client.LastApplied(ctx)
	if err != nil {
		return LedgerState{}, err
	}
	if !ok {
		return LedgerState{State: StateNoneApplied}, nil
	}
	return LedgerState{State: StateApplied, Last: last}, nil
}

// CreateLedger creates the ledger table, failing with
// ErrMigrationTableExists if it is already present. Up creates the table
// implicitly; this is for callers that want the explicit step.
func (m *Migrator) CreateLedger(ctx context.Context) error {
	has, err := m.client.HasLedgerTable(ctx)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrMigrationTableExists, m.cfg.TableName)
	}
	return m.client.CreateLedgerTable(ctx)
}

// Pending returns the up migrations that would run on the next Up call, in
// apply order.
func (m *Migrator) Pending(ctx context.Context) ([]Identity, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := m.pending(ctx, state)
	if err != nil {
		return nil, err
	}
	ids := make([]Identity, len(pending))
	for i, f := range pending {
		ids[i] = f.Identity
	}
	return ids, nil
}

// Up applies every pending migration in ascending version order, creating
// the ledger table first if it has never existed. Each migration runs in
// its own transaction together with its ledger insert; the first failure
// stops the batch and is returned with the migrations applied so far.
func (m *Migrator) Up(ctx context.Context) ([]LedgerRow, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	if state.State == StateNoTable {
		if err := m.client.CreateLedgerTable(ctx); err != nil {
			return nil, fmt.Errorf("creating ledger table %s: %w", m.cfg.TableName, err)
		}
	}

	pending, err := m.pending(ctx, state)
	if err != nil {
		return nil, err
	}

	if m.cfg.ValidateChecksums {
		if err := m.validateApplied(ctx); err != nil {
			return nil, err
		}
	}

	var applied []LedgerRow
	for _, f := range pending {
		row, err := m.applyUp(ctx, f)
		if err != nil {
			return applied, fmt.Errorf("applying migration %s: %w", filepath.Base(f.Path), err)
		}
		applied = append(applied, row)
	}
	return applied, nil
}

// Down reverts exactly the most recently applied migration. It never walks
// further back; repeat calls unwind one version at a time.
func (m *Migrator) Down(ctx context.Context) (*LedgerRow, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	switch state.State {
	case StateNoTable:
		return nil, ErrNoMigrationTable
	case StateNoneApplied:
		return nil, ErrNoAppliedMigrations
	}
	last := state.Last

	downs, err := scanMigrations(m.cfg.Dir, TypeDown)
	if err != nil {
		return nil, err
	}
	var target *fileMigration
	for i := range downs {
		if downs[i].Version == last.Version {
			target = &downs[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("sqlmirror: no down migration file for applied version %s (%s)", last.Version, last.Filename)
	}

	if err := m.applyDown(ctx, *target); err != nil {
		return nil, fmt.Errorf("reverting migration %s: %w", filepath.Base(target.Path), err)
	}
	return &last, nil
}

// pending computes the runnable up migrations. The pending criterion is
// ledger absence alone; an unapplied version sitting below the applied head
// would otherwise be skipped forever, so it is rejected outright and the
// operator has to renumber it.
func (m *Migrator) pending(ctx context.Context, state LedgerState) ([]fileMigration, error) {
	ups, err := scanMigrations(m.cfg.Dir, TypeUp)
	if err != nil {
		return nil, err
	}
	if state.State == StateNoTable {
		return ups, nil
	}

	appliedRows, err := m.client.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var pending []fileMigration
	for _, f := range ups {
		if _, ok := appliedRows[f.Version]; ok {
			continue
		}
		if state.State == StateApplied && compareVersions(f.Version, state.Last.Version) < 0 {
			return nil, fmt.Errorf("sqlmirror: migration %s has version %s below the applied head %s but was never applied; renumber it above the head",
				filepath.Base(f.Path), f.Version, state.Last.Version)
		}
		pending = append(pending, f)
	}
	return pending, nil
}

// validateApplied verifies that the on-disk files of already-applied
// migrations still match the checksums recorded at apply time.
func (m *Migrator) validateApplied(ctx context.Context) error {
	appliedRows, err := m.client.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(appliedRows) == 0 {
		return nil
	}
	ups, err := scanMigrations(m.cfg.Dir, TypeUp)
	if err != nil {
		return err
	}
	for _, f := range ups {
		row, ok := appliedRows[f.Version]
		if !ok {
			continue
		}
		sum, err := fileChecksum(f.Path, m.cfg.Newline)
		if err != nil {
			return err
		}
		if row.Checksum != "" && sum != row.Checksum {
			return fmt.Errorf("sqlmirror: checksum mismatch for applied migration %s (version %s): file changed after it was applied",
				filepath.Base(f.Path), f.Version)
		}
	}
	return nil
}

// applyUp runs one up migration: regenerate its SQL from the sibling config
// document if one exists, then execute the script and insert the ledger row
// in a single transaction.
func (m *Migrator) applyUp(ctx context.Context, f fileMigration) (LedgerRow, error) {
	if err := m.regenerate(f); err != nil {
		return LedgerRow{}, err
	}

	script, err := os.ReadFile(f.Path)
	if err != nil {
		return LedgerRow{}, err
	}
	sum, err := checksum(string(script), m.cfg.Newline)
	if err != nil {
		return LedgerRow{}, err
	}

	row := LedgerRow{
		Version:  f.Version,
		Name:     f.Name,
		Filename: filepath.Base(f.Path),
		Checksum: sum,
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerRow{}, err
	}
	if _, err := tx.ExecContext(ctx, executableScript(string(script))); err != nil {
		_ = tx.Rollback()
		return LedgerRow{}, err
	}
	if err := m.client.InsertRow(ctx, tx, row); err != nil {
		_ = tx.Rollback()
		return LedgerRow{}, err
	}
	if err := tx.Commit(); err != nil {
		return LedgerRow{}, err
	}
	return row, nil
}

// executableScript strips the document-level BEGIN/COMMIT TRANSACTION lines
// from a migration script. Assembled documents carry the wrapper so they can
// be applied by hand as standalone files; here the controller supplies the
// transaction, and the wrapper would nest a transaction inside it. Checksums
// are still computed over the file text as written.
func executableScript(script string) string {
	lines := strings.Split(script, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case "BEGIN TRANSACTION;", "COMMIT TRANSACTION;":
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// applyDown runs one down migration and deletes its ledger row in a single
// transaction.
func (m *Migrator) applyDown(ctx context.Context, f fileMigration) error {
	if err := m.regenerate(f); err != nil {
		return err
	}

	script, err := os.ReadFile(f.Path)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, executableScript(string(script))); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := m.client.DeleteRow(ctx, tx, f.Version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// regenerate rewrites a migration's SQL file from its sibling config
// document when one resolves. The config document is the source of truth;
// the .sql file is a cached, checksummable artifact of it.
func (m *Migrator) regenerate(f fileMigration) error {
	if m.cfg.Loader == nil {
		return nil
	}
	cfgName, err := Identity{Type: TypeConfig, Version: f.Version, Name: f.Name}.Filename()
	if err != nil {
		return err
	}
	schemaCfg, ok, err := m.cfg.Loader.Load(filepath.Join(m.cfg.Dir, cfgName))
	if err != nil {
		return fmt.Errorf("loading config %s: %w", cfgName, err)
	}
	if !ok {
		return nil
	}

	doc, err := Assemble(*schemaCfg)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", cfgName, err)
	}
	text := doc.Up
	if f.Type == TypeDown {
		text = doc.Down
	}
	return os.WriteFile(f.Path, []byte(text), 0o644)
}
