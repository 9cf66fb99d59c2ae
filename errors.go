package sqlmirror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the migration lifecycle. Callers should match them
// with errors.Is; they are always wrapped with the offending filename or
// version where one exists.
var (
	// ErrInvalidMigrationType is returned when a filename or identity carries
	// a type marker other than up, down or config.
	ErrInvalidMigrationType = errors.New("sqlmirror: invalid migration type")

	// ErrInvalidVersion is returned when a version string does not parse as a
	// three-component semantic version.
	ErrInvalidVersion = errors.New("sqlmirror: invalid semantic version")

	// ErrMigrationTableExists is returned when creating the ledger table while
	// one already exists.
	ErrMigrationTableExists = errors.New("sqlmirror: migration table already exists")

	// ErrNoMigrationTable is returned by Down when the ledger table has never
	// been created.
	ErrNoMigrationTable = errors.New("sqlmirror: migration table does not exist")

	// ErrNoAppliedMigrations is returned by Down when the ledger is empty.
	ErrNoAppliedMigrations = errors.New("sqlmirror: no migrations have been applied")
)

// CyclicDependencyError is returned by Assemble when the table reference
// graph contains a cycle and no valid creation order exists.
type CyclicDependencyError struct {
	// Table is a table participating in the cycle.
	Table string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("sqlmirror: cyclic table reference involving %q", e.Table)
}
