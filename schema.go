package sqlmirror

// SchemaConfig is the declarative input to Assemble. It is built fresh per
// invocation and never persisted; the rendered documents are the only
// artifacts.
type SchemaConfig struct {
	// Extensions to install before anything else. Deduplicated by name with
	// extensions contributed by table plugins; first occurrence wins.
	Extensions []Extension

	// Functions are rendered after extensions, in declared order.
	Functions []Function

	// Tables may be declared in any order; creation order is recomputed from
	// the reference graph. Names must be unique.
	Tables []Table
}

// Extension is the install/uninstall DDL pair for a database extension,
// keyed by name.
type Extension struct {
	Name string `json:"name"`
	Up   string `json:"up"`
	Down string `json:"down"`
}

// Function is a named create/drop pair, typically a trigger function.
type Function struct {
	Name string `json:"name"`
	Up   string `json:"up"`
	Down string `json:"down"`
}

// TypeDef is a named create/drop pair for a type a single table depends on,
// rendered immediately before that table.
type TypeDef struct {
	Name string `json:"name"`
	Up   string `json:"up"`
	Down string `json:"down"`
}

// Table declares one relation: its own columns, references to other tables,
// supporting types and attached plugins.
type Table struct {
	// Name doubles as the SQL identifier and the target other tables name in
	// their References.
	Name string

	// Columns are resolved definitions, "name type-and-constraints".
	Columns []string

	// References both generate a column and impose creation order: the
	// referenced table is created first and dropped last.
	References []Reference

	Types   []TypeDef
	Plugins []Plugin

	// DisableID suppresses the generated uuid primary-key column.
	DisableID bool
}

// Reference names a column in this table pointing at another table in the
// same config.
type Reference struct {
	Column   string `json:"column"`
	Table    string `json:"table"`
	Nullable bool   `json:"nullable"`
}
