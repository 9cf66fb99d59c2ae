package sqlmirror

import (
	"fmt"
	"strings"
)

// Chunk pairs the forward and reverse SQL text for one schema fragment.
// Chunks are plain values; nothing in this file performs I/O or holds state
// between calls.
type Chunk struct {
	Up   string
	Down string
}

// sqlf formats SQL with automatic dedenting and blank line removal.
// Generated text is identical no matter how the template literal was
// indented at the call site, which keeps file checksums reproducible.
func sqlf(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	lines := strings.Split(s, "\n")

	minIndent := 1 << 30
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if indent < minIndent {
			minIndent = indent
		}
	}

	var result []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) >= minIndent {
			result = append(result, line[minIndent:])
		} else {
			result = append(result, strings.TrimLeft(line, " \t"))
		}
	}

	return strings.Join(result, "\n")
}

// NewExtension builds the install/uninstall pair for a Postgres extension.
func NewExtension(name string) Extension {
	return Extension{
		Name: name,
		Up:   fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s";`, name),
		Down: fmt.Sprintf(`DROP EXTENSION IF EXISTS "%s";`, name),
	}
}

// ExtUUIDOSSP provides uuid_generate_v4(), the default for generated id
// columns. Tables rendered without DisableID depend on it.
func ExtUUIDOSSP() Extension {
	return NewExtension("uuid-ossp")
}

// TableOptions controls table rendering.
type TableOptions struct {
	// DisableID suppresses the generated uuid primary-key column.
	DisableID bool
}

// IDColumn returns the generated primary-key column definition for a table.
func IDColumn(table string) string {
	return fmt.Sprintf("%s_id uuid PRIMARY KEY DEFAULT uuid_generate_v4()", table)
}

// RenderTable emits a CREATE TABLE IF NOT EXISTS statement with one column
// per line and its matching unconditional DROP TABLE IF EXISTS. Columns are
// already-resolved definitions of the form "name type-and-constraints";
// internal whitespace is normalized so output is stable regardless of how
// the definitions were authored.
func RenderTable(name string, columns []string, opts TableOptions) Chunk {
	cols := make([]string, 0, len(columns)+1)
	if !opts.DisableID {
		cols = append(cols, IDColumn(name))
	}
	for _, c := range columns {
		cols = append(cols, strings.Join(strings.Fields(c), " "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", name)
	for i, c := range cols {
		b.WriteString("  " + c)
		if i < len(cols)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")

	return Chunk{
		Up:   b.String(),
		Down: fmt.Sprintf("DROP TABLE IF EXISTS %s;", name),
	}
}

// ReferenceColumn resolves a Reference into a column definition pointing at
// the referenced table's generated id column. NOT NULL unless nullable.
func ReferenceColumn(column, table string, nullable bool) string {
	def := fmt.Sprintf("%s uuid REFERENCES %s(%s_id)", column, table, table)
	if !nullable {
		def += " NOT NULL"
	}
	return def
}
