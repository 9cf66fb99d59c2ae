package sqlmirror

import (
	"bytes"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// ConfigLoader resolves a migration's sibling config document into a schema
// config. Returning ok=false means no config exists for the migration and
// its SQL file is executed as-is.
//
// Loaders are injected through Config rather than discovered, keeping the
// lifecycle controller free of dynamic code loading.
type ConfigLoader interface {
	Load(path string) (cfg *SchemaConfig, ok bool, err error)
}

// YAMLLoader reads declarative config documents:
//
//	extensions:
//	  - uuid-ossp
//	functions:
//	  - name: audit_stamp
//	    up: CREATE OR REPLACE FUNCTION ...
//	    down: DROP FUNCTION IF EXISTS ...
//	tables:
//	  - name: users
//	    columns:
//	      - email varchar NOT NULL
//	    references:
//	      - column: org_id
//	        table: orgs
//	        nullable: true
//	    plugins: [timestamps]
//
// Plugin names resolve against the loader's map; extensions named as bare
// strings expand to the standard install/uninstall pair.
type YAMLLoader struct {
	// Plugins maps names usable in config documents to their bundles.
	Plugins map[string]Plugin
}

// NewYAMLLoader creates a loader resolving the builtin plugins.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{Plugins: BuiltinPlugins()}
}

type configDoc struct {
	Extensions []string      `json:"extensions"`
	Functions  []Function    `json:"functions"`
	Tables     []configTable `json:"tables"`
}

type configTable struct {
	Name       string      `json:"name"`
	Columns    []string    `json:"columns"`
	References []Reference `json:"references"`
	Types      []TypeDef   `json:"types"`
	Plugins    []string    `json:"plugins"`
	DisableID  bool        `json:"disable_id"`
}

// Load reads the document at path. A missing or empty document means the
// migration has no config and is not regenerated.
func (l *YAMLLoader) Load(path string) (*SchemaConfig, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}

	var doc configDoc
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Extensions) == 0 && len(doc.Functions) == 0 && len(doc.Tables) == 0 {
		return nil, false, nil
	}

	cfg := SchemaConfig{Functions: doc.Functions}
	for _, name := range doc.Extensions {
		cfg.Extensions = append(cfg.Extensions, NewExtension(name))
	}
	for _, t := range doc.Tables {
		table := Table{
			Name:       t.Name,
			Columns:    t.Columns,
			References: t.References,
			Types:      t.Types,
			DisableID:  t.DisableID,
		}
		for _, pname := range t.Plugins {
			p, ok := l.Plugins[pname]
			if !ok {
				return nil, false, fmt.Errorf("parsing %s: unknown plugin %q on table %q", path, pname, t.Name)
			}
			table.Plugins = append(table.Plugins, p)
		}
		cfg.Tables = append(cfg.Tables, table)
	}
	return &cfg, true, nil
}
