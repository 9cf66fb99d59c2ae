package sqlmirror

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// fileMigration is one migration file found on disk.
type fileMigration struct {
	Identity
	Path string
}

// scanMigrations lists the migration files of one kind in dir, sorted
// ascending by semantic version. Files whose names do not decode are
// ignored; two files claiming the same version are a hard failure since the
// apply order would be ambiguous.
func scanMigrations(dir string, typ MigrationType) ([]fileMigration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrations []fileMigration
	byVersion := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, err := ParseFilename(entry.Name())
		if err != nil {
			continue
		}
		if id.Type != typ {
			continue
		}
		if prev, dup := byVersion[id.Version]; dup {
			return nil, fmt.Errorf("sqlmirror: duplicate %s migration for version %s (%s and %s)",
				typ, id.Version, prev, entry.Name())
		}
		byVersion[id.Version] = entry.Name()
		migrations = append(migrations, fileMigration{
			Identity: id,
			Path:     filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return compareVersions(migrations[i].Version, migrations[j].Version) < 0
	})
	return migrations, nil
}

// convertLineEnding converts all newline variations in content to the target style.
func convertLineEnding(content, lineEnding string) (string, error) {
	var target string
	switch lineEnding {
	case "LF":
		target = "\n"
	case "CR":
		target = "\r"
	case "CRLF":
		target = "\r\n"
	default:
		return "", fmt.Errorf("newline must be one of: LF, CR, CRLF")
	}
	re := regexp.MustCompile(`\r\n|\r|\n`)
	return re.ReplaceAllString(content, target), nil
}

// checksum computes the hex-encoded MD5 digest of the content, after
// normalizing line endings if a style is configured. Normalization keeps
// digests stable for files that crossed platforms.
func checksum(content, lineEnding string) (string, error) {
	if lineEnding != "" {
		var err error
		content, err = convertLineEnding(content, lineEnding)
		if err != nil {
			return "", err
		}
	}
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

// fileChecksum reads a file and returns its digest.
func fileChecksum(filename, lineEnding string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return checksum(string(data), lineEnding)
}
