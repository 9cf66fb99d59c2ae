package sqlmirror

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// CreatedFiles lists the files scaffolded for one new migration.
type CreatedFiles struct {
	Up     string
	Down   string
	Config string
}

// CreateMigration scaffolds the up/down/config files for the next version:
// the next major semantic version after the highest already on disk, or
// 1.0.0 when the directory holds none. The name is transliterated to
// snake_case for the filename segment.
func CreateMigration(cfg Config, name string) (CreatedFiles, error) {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return CreatedFiles{}, fmt.Errorf("scanning migration directory: %w", err)
	}

	var highest *semver.Version
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, err := ParseFilename(entry.Name())
		if err != nil {
			continue
		}
		v, err := semver.StrictNewVersion(id.Version)
		if err != nil {
			continue
		}
		if highest == nil || v.GreaterThan(highest) {
			highest = v
		}
	}

	next := "1.0.0"
	if highest != nil {
		n := highest.IncMajor()
		next = n.String()
	}

	files := CreatedFiles{}
	stubs := []struct {
		typ     MigrationType
		content string
		dest    *string
	}{
		{TypeUp, "-- Write your migration SQL here\n", &files.Up},
		{TypeDown, "-- Write your rollback SQL here\n", &files.Down},
		{TypeConfig, configStub, &files.Config},
	}
	for _, s := range stubs {
		filename, err := Identity{Type: s.typ, Version: next, Name: name}.Filename()
		if err != nil {
			return CreatedFiles{}, err
		}
		path := filepath.Join(cfg.Dir, filename)
		if err := os.WriteFile(path, []byte(s.content), 0o644); err != nil {
			return CreatedFiles{}, fmt.Errorf("failed to create migration file %s: %w", path, err)
		}
		*s.dest = path
	}
	return files, nil
}

// An empty config document means the .sql files stay the source of truth.
const configStub = `# Declarative schema config for this migration.
# When tables/functions/extensions are declared here, the sibling .sql files
# are regenerated from this document before every run.
`

// CreateMigration scaffolds files using the Migrator's configuration.
func (m *Migrator) CreateMigration(name string) (CreatedFiles, error) {
	return CreateMigration(m.cfg, name)
}
