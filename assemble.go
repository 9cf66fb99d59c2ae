package sqlmirror

import (
	"fmt"
	"strings"
	"time"
)

// Document is the matched pair of fully rendered migration scripts for one
// schema config. Each script is wrapped in a single transaction block so a
// standalone hand application either fully succeeds or leaves no SQL-level
// side effects; the Migrator strips the wrapper and runs the script inside
// its own transaction. Statements like CREATE EXTENSION are not
// transactional on every engine; that caveat is the engine's, not this
// layer's.
type Document struct {
	Up   string
	Down string
}

// Assemble renders the forward and reverse scripts for a schema config.
//
// Table creation order is recomputed from the reference graph: a referenced
// table is always created before its referencer, and dropped after it. A
// cycle in the graph is a hard failure (CyclicDependencyError) since no
// valid order exists.
func Assemble(cfg SchemaConfig) (Document, error) {
	return assembleAt(cfg, time.Now())
}

func assembleAt(cfg SchemaConfig, now time.Time) (Document, error) {
	byName := make(map[string]*Table, len(cfg.Tables))
	for i := range cfg.Tables {
		t := &cfg.Tables[i]
		if _, dup := byName[t.Name]; dup {
			return Document{}, fmt.Errorf("sqlmirror: duplicate table %q in schema config", t.Name)
		}
		byName[t.Name] = t
	}

	extensions, err := aggregateExtensions(cfg)
	if err != nil {
		return Document{}, err
	}

	sorted, err := sortTables(cfg.Tables, byName)
	if err != nil {
		return Document{}, err
	}

	header := fmt.Sprintf("-- This file was generated via sql-mirror at %s", now.UTC().Format(time.RFC3339))

	up := []string{header, "BEGIN TRANSACTION;"}
	for _, e := range extensions {
		up = append(up, e.Up)
	}
	for _, f := range cfg.Functions {
		up = append(up, f.Up)
	}
	for _, t := range sorted {
		for _, td := range t.Types {
			up = append(up, td.Up)
		}
		cols := resolveColumns(t)
		up = append(up, RenderTable(t.Name, cols, TableOptions{DisableID: t.DisableID}).Up)
		for _, p := range t.Plugins {
			for _, trig := range p.Triggers {
				up = append(up, trig(t.Name, cols).Up)
			}
		}
	}
	up = append(up, "COMMIT TRANSACTION;")

	down := []string{header, "BEGIN TRANSACTION;"}
	for i := len(sorted) - 1; i >= 0; i-- {
		t := sorted[i]
		cols := resolveColumns(t)
		for j := len(t.Plugins) - 1; j >= 0; j-- {
			p := t.Plugins[j]
			for k := len(p.Triggers) - 1; k >= 0; k-- {
				down = append(down, p.Triggers[k](t.Name, cols).Down)
			}
		}
		down = append(down, RenderTable(t.Name, cols, TableOptions{DisableID: t.DisableID}).Down)
		for j := len(t.Types) - 1; j >= 0; j-- {
			down = append(down, t.Types[j].Down)
		}
	}
	for i := len(cfg.Functions) - 1; i >= 0; i-- {
		down = append(down, cfg.Functions[i].Down)
	}
	for i := len(extensions) - 1; i >= 0; i-- {
		down = append(down, extensions[i].Down)
	}
	down = append(down, "COMMIT TRANSACTION;")

	return Document{
		Up:   strings.Join(up, "\n\n") + "\n",
		Down: strings.Join(down, "\n\n") + "\n",
	}, nil
}

// resolveColumns flattens a table's column definitions in render order:
// reference-derived columns first, then declared columns, then
// plugin-contributed columns. The generated id column is not included here;
// RenderTable prepends it.
func resolveColumns(t *Table) []string {
	cols := make([]string, 0, len(t.References)+len(t.Columns))
	for _, r := range t.References {
		cols = append(cols, ReferenceColumn(r.Column, r.Table, r.Nullable))
	}
	cols = append(cols, t.Columns...)
	for _, p := range t.Plugins {
		cols = append(cols, p.Columns...)
	}
	return cols
}

// aggregateExtensions merges globally declared extensions with those
// contributed by table plugins, deduplicating by name. First occurrence
// wins; globals are considered before plugin contributions.
func aggregateExtensions(cfg SchemaConfig) ([]Extension, error) {
	var out []Extension
	seen := make(map[string]struct{})
	add := func(e Extension) {
		if _, ok := seen[e.Name]; ok {
			return
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	for _, e := range cfg.Extensions {
		add(e)
	}
	for _, t := range cfg.Tables {
		for _, p := range t.Plugins {
			for _, e := range p.Extensions {
				add(e)
			}
		}
	}
	return out, nil
}

// sortTables orders tables referenced-before-referencing via depth-first
// search. Iteration follows declared order so output is deterministic for a
// given config.
func sortTables(tables []Table, byName map[string]*Table) ([]*Table, error) {
	// States: 0=unvisited, 1=visiting, 2=visited.
	state := make(map[string]int, len(tables))
	order := make([]*Table, 0, len(tables))

	var visit func(t *Table) error
	visit = func(t *Table) error {
		switch state[t.Name] {
		case 2:
			return nil
		case 1:
			return &CyclicDependencyError{Table: t.Name}
		}
		state[t.Name] = 1
		for _, r := range t.References {
			dep, ok := byName[r.Table]
			if !ok {
				return fmt.Errorf("sqlmirror: table %q references unknown table %q", t.Name, r.Table)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[t.Name] = 2
		order = append(order, t)
		return nil
	}

	for i := range tables {
		if err := visit(byName[tables[i].Name]); err != nil {
			return nil, err
		}
	}
	return order, nil
}
