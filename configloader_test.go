package sqlmirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestYAMLLoaderLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "1.0.0_config__initial.yaml", `
extensions:
  - uuid-ossp
functions:
  - name: noop
    up: CREATE OR REPLACE FUNCTION noop() RETURNS void AS $$ BEGIN END; $$ LANGUAGE plpgsql;
    down: DROP FUNCTION IF EXISTS noop();
tables:
  - name: orgs
    columns:
      - name varchar NOT NULL
  - name: users
    columns:
      - email varchar NOT NULL
    references:
      - column: org_id
        table: orgs
        nullable: true
    plugins: [timestamps]
`)

	cfg, ok, err := NewYAMLLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for a populated document")
	}

	if len(cfg.Extensions) != 1 || cfg.Extensions[0].Name != "uuid-ossp" {
		t.Errorf("unexpected extensions: %+v", cfg.Extensions)
	}
	if cfg.Extensions[0].Up != `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";` {
		t.Errorf("bare extension name did not expand: %q", cfg.Extensions[0].Up)
	}
	if len(cfg.Functions) != 1 || cfg.Functions[0].Name != "noop" {
		t.Errorf("unexpected functions: %+v", cfg.Functions)
	}
	if len(cfg.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(cfg.Tables))
	}

	users := cfg.Tables[1]
	if users.Name != "users" {
		t.Fatalf("unexpected table order: %+v", cfg.Tables)
	}
	if len(users.References) != 1 || users.References[0].Table != "orgs" || !users.References[0].Nullable {
		t.Errorf("unexpected references: %+v", users.References)
	}
	if len(users.Plugins) != 1 || users.Plugins[0].Name != "timestamps" {
		t.Errorf("plugin name did not resolve: %+v", users.Plugins)
	}

	// The loaded config assembles without further shaping.
	if _, err := Assemble(*cfg); err != nil {
		t.Errorf("loaded config does not assemble: %v", err)
	}
}

func TestYAMLLoaderUnknownPlugin(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "1.0.0_config__initial.yaml", `
tables:
  - name: users
    plugins: [no_such_plugin]
`)
	_, _, err := NewYAMLLoader().Load(path)
	if err == nil || !strings.Contains(err.Error(), `unknown plugin "no_such_plugin"`) {
		t.Fatalf("expected unknown plugin error, got %v", err)
	}
}

func TestYAMLLoaderUnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "1.0.0_config__initial.yaml", `
tables:
  - name: users
    colums:
      - email varchar
`)
	_, _, err := NewYAMLLoader().Load(path)
	if err == nil {
		t.Fatal("expected strict parsing to reject the misspelled field")
	}
}

func TestYAMLLoaderMissingFile(t *testing.T) {
	cfg, ok, err := NewYAMLLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if ok || cfg != nil {
		t.Errorf("missing file should resolve to no config, got ok=%v cfg=%+v", ok, cfg)
	}
}

func TestYAMLLoaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"blank.yaml":    "",
		"space.yaml":    "  \n\t\n",
		"comments.yaml": "# nothing here yet\n",
	} {
		cfg, ok, err := NewYAMLLoader().Load(writeConfig(t, dir, name, content))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if ok || cfg != nil {
			t.Errorf("%s: empty document should resolve to no config", name)
		}
	}
}

// TestRegenerateRewritesFromConfig drives regeneration through a Migrator
// directly: a migration with a sibling config document gets its SQL file
// rewritten from the assembled output before execution.
func TestRegenerateRewritesFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "1.0.0_config__initial.yaml", `
tables:
  - name: users
    columns:
      - email varchar NOT NULL
`)
	upPath := writeConfig(t, dir, "1.0.0_up__initial.sql", "-- stale hand-written content\n")
	downPath := writeConfig(t, dir, "1.0.0_down__initial.sql", "-- stale hand-written content\n")

	m := &Migrator{cfg: Config{Dir: dir, Loader: NewYAMLLoader()}}

	for _, f := range []fileMigration{
		{Identity: Identity{Type: TypeUp, Version: "1.0.0", Name: "initial", Ext: ".sql"}, Path: upPath},
		{Identity: Identity{Type: TypeDown, Version: "1.0.0", Name: "initial", Ext: ".sql"}, Path: downPath},
	} {
		if err := m.regenerate(f); err != nil {
			t.Fatalf("regenerate(%s): %v", f.Path, err)
		}
	}

	up, err := os.ReadFile(upPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(up), "-- This file was generated via sql-mirror at ") {
		t.Errorf("up file missing generated header:\n%s", up)
	}
	if !strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS users (") {
		t.Errorf("up file missing assembled DDL:\n%s", up)
	}

	down, err := os.ReadFile(downPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(down), "DROP TABLE IF EXISTS users;") {
		t.Errorf("down file missing assembled DDL:\n%s", down)
	}
}

// TestExecutableScriptStripsWrapper: the document-level transaction lines
// are removed before execution, nothing else.
func TestExecutableScriptStripsWrapper(t *testing.T) {
	doc, err := assembleAt(SchemaConfig{
		Tables: []Table{{Name: "users", Columns: []string{"email varchar"}, DisableID: true}},
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	got := executableScript(doc.Up)
	if strings.Contains(got, "BEGIN TRANSACTION;") || strings.Contains(got, "COMMIT TRANSACTION;") {
		t.Errorf("wrapper not stripped:\n%s", got)
	}
	if !strings.Contains(got, "CREATE TABLE IF NOT EXISTS users (") {
		t.Errorf("statement lost while stripping:\n%s", got)
	}
	if !strings.Contains(got, "-- This file was generated via sql-mirror at ") {
		t.Errorf("header lost while stripping:\n%s", got)
	}

	// Hand-written scripts without a wrapper pass through unchanged.
	plain := "CREATE TABLE widgets (w int);\nINSERT INTO widgets VALUES (1);"
	if executableScript(plain) != plain {
		t.Errorf("plain script modified: %q", executableScript(plain))
	}
}

// TestRegenerateSkipsWithoutConfig: no sibling config document leaves the
// SQL file untouched.
func TestRegenerateSkipsWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	original := "-- hand-written migration\nCREATE TABLE widgets (w int);\n"
	upPath := writeConfig(t, dir, "1.0.0_up__widgets.sql", original)

	m := &Migrator{cfg: Config{Dir: dir, Loader: NewYAMLLoader()}}
	f := fileMigration{Identity: Identity{Type: TypeUp, Version: "1.0.0", Name: "widgets", Ext: ".sql"}, Path: upPath}
	if err := m.regenerate(f); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	got, err := os.ReadFile(upPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != original {
		t.Errorf("file rewritten without a config document:\n%s", got)
	}
}
