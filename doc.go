// SPDX-License-Identifier: MIT

// Package sqlmirror generates versioned relational-schema migrations from
// declarative building blocks and tracks which migrations have been applied
// to a target database.
//
// Two subsystems cooperate.  The schema assembler takes a declarative
// description of extensions, functions and tables (with columns, references
// and table-level plugins) and renders matched forward and reverse SQL
// scripts in dependency-correct order.  The migration lifecycle controller
// reconciles the migration files on disk against a ledger table in the
// database, decides which migrations are pending, and applies or reverts
// them one transaction at a time with checksum and version-order integrity
// checks.
//
// # Quick start
//
//	import (
//	    "context"
//	    "database/sql"
//
//	    _ "github.com/jackc/pgx/v5/stdlib" // or sqlite3
//	    "github.com/sqlmirror/sqlmirror"
//	)
//
//	func main() {
//	    db, _ := sql.Open("pgx", os.Getenv("DATABASE_URL"))
//	    cfg := sqlmirror.Config{
//	        Driver: "pg",
//	        Dir:    "migrations",
//	        Loader: sqlmirror.NewYAMLLoader(),
//	    }
//
//	    m, _ := sqlmirror.NewMigrator(cfg, db)
//	    m.Up(context.Background())
//	}
//
// # Migration files
//
// One directory holds all migrations.  A migration is an up/down pair plus
// an optional declarative config document sharing the same version and name:
//
//	1.0.0_up__add_users.sql
//	1.0.0_down__add_users.sql
//	1.0.0_config__add_users.yaml
//
// Versions are three-component semantic versions and migrations apply in
// ascending version order.  When a config document declares tables, the
// .sql pair is regenerated from it before every run; the document is the
// source of truth and the .sql files are cached, checksummable artifacts.
//
// # Ledger
//
// Applied migrations are recorded in a ledger table (default
// "sqlmirror_migration").  A row is inserted in the same transaction as the
// migration's script, so schema change and bookkeeping succeed or fail
// together.  Down reverts exactly the most recent row, one version per call.
//
// # Assembled documents
//
// Assemble renders Postgres-dialect scripts.  Tables are created referenced
// before referencing and dropped in the exact reverse order; a cyclic
// reference graph is a hard failure.  Both documents are wrapped in a single
// transaction block and carry a generation-timestamp header comment.  The
// wrapper matters when a document is applied by hand; the migrator strips it
// before execution and runs the script in its own transaction instead.
//
// # Concurrency
//
// A Migrator runs one logical workflow per invocation and takes no advisory
// lock.  Concurrent Up calls from separate processes against the same
// database must be serialized by the caller.
//
// # Programmatic API
//
//	NewMigrator(cfg, db)                → *Migrator
//	(*Migrator).Up(ctx)                 → []LedgerRow, error
//	(*Migrator).Down(ctx)               → *LedgerRow, error
//	(*Migrator).State(ctx)              → LedgerState, error
//	(*Migrator).Pending(ctx)            → []Identity, error
//	(*Migrator).CreateMigration(name)   → CreatedFiles, error
//	Assemble(schemaConfig)              → Document, error
//
// All database operations are context-aware.
//
// # CLI
//
// The sqlmirror command under cmd/sqlmirror wraps this package with up,
// down, create and status commands; it exits non-zero on any failure.
package sqlmirror
