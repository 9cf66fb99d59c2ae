package sqlmirror

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MigrationType is the kind marker embedded in a migration filename.
type MigrationType string

const (
	TypeUp     MigrationType = "up"
	TypeDown   MigrationType = "down"
	TypeConfig MigrationType = "config"
)

func (t MigrationType) valid() bool {
	switch t {
	case TypeUp, TypeDown, TypeConfig:
		return true
	}
	return false
}

// defaultExt is the file extension used when serializing an identity that
// does not carry one.
func (t MigrationType) defaultExt() string {
	if t == TypeConfig {
		return ".yaml"
	}
	return ".sql"
}

// Identity is the semantic identity of one migration file. Filenames encode
// it as <version>_<type>__<snake_case name><ext>, e.g.
//
//	1.0.0_up__add_users.sql
//	1.0.0_down__add_users.sql
//	1.0.0_config__add_users.yaml
type Identity struct {
	Type    MigrationType
	Version string
	Name    string
	Ext     string
}

// Filename serializes the identity to its canonical filename. The name is
// transliterated to snake_case before embedding, so identities whose names
// need transliteration do not round-trip through ParseFilename; identities
// already in snake_case do.
func (id Identity) Filename() (string, error) {
	if !id.Type.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMigrationType, string(id.Type))
	}
	if _, err := semver.StrictNewVersion(id.Version); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, id.Version)
	}
	ext := id.Ext
	if ext == "" {
		ext = id.Type.defaultExt()
	}
	return fmt.Sprintf("%s_%s__%s%s", id.Version, id.Type, snakeCase(id.Name), ext), nil
}

// ParseFilename decodes a migration filename back into its identity. The
// input may be a full path; only the base name is considered.
func ParseFilename(filename string) (Identity, error) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	sep := strings.Index(stem, "__")
	if sep < 0 {
		return Identity{}, fmt.Errorf("%w: %q is missing the __ separator", ErrInvalidMigrationType, base)
	}
	verSeg, name := stem[:sep], stem[sep+2:]

	mark := strings.LastIndex(verSeg, "_")
	if mark < 0 {
		return Identity{}, fmt.Errorf("%w: %q has no type marker", ErrInvalidMigrationType, base)
	}
	version, typ := verSeg[:mark], MigrationType(verSeg[mark+1:])

	if !typ.valid() {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidMigrationType, string(typ))
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	return Identity{Type: typ, Version: version, Name: name, Ext: ext}, nil
}

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonSnake      = regexp.MustCompile(`[^a-z0-9]+`)
)

// snakeCase transliterates a human migration name for embedding in a
// filename: camelCase boundaries become underscores, everything is
// lowercased, and runs of non-alphanumerics collapse to one underscore.
func snakeCase(s string) string {
	s = camelBoundary.ReplaceAllString(strings.TrimSpace(s), "${1}_${2}")
	s = strings.ToLower(s)
	s = nonSnake.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// compareVersions orders two already-validated semantic versions.
func compareVersions(a, b string) int {
	va, err := semver.StrictNewVersion(a)
	if err != nil {
		return strings.Compare(a, b)
	}
	vb, err := semver.StrictNewVersion(b)
	if err != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
