package sqlmirror

import "fmt"

// TriggerFunc renders a per-table trigger pair from the table name and its
// resolved column definitions.
type TriggerFunc func(table string, columns []string) Chunk

// Plugin bundles table-level boilerplate: extensions to install once,
// columns appended to every attached table, and triggers created alongside
// it. Extensions are aggregated into the global set and deduplicated by
// name, so a plugin shared by many tables installs its dependencies once.
type Plugin struct {
	Name       string
	Extensions []Extension
	Columns    []string
	Triggers   []TriggerFunc
}

// TimestampsPlugin maintains created_at and updated_at columns on every
// attached table, with a shared trigger function keeping updated_at current.
func TimestampsPlugin() Plugin {
	return Plugin{
		Name: "timestamps",
		Extensions: []Extension{
			{
				Name: "sqlmirror_set_updated_at",
				Up: sqlf(`
					CREATE OR REPLACE FUNCTION sqlmirror_set_updated_at()
					RETURNS TRIGGER AS $$
					BEGIN
					  NEW.updated_at = now();
					  RETURN NEW;
					END;
					$$ LANGUAGE plpgsql;`),
				Down: `DROP FUNCTION IF EXISTS sqlmirror_set_updated_at();`,
			},
		},
		Columns: []string{
			"created_at timestamp NOT NULL DEFAULT now()",
			"updated_at timestamp NOT NULL DEFAULT now()",
		},
		Triggers: []TriggerFunc{updatedAtTrigger},
	}
}

func updatedAtTrigger(table string, _ []string) Chunk {
	return Chunk{
		Up: sqlf(`
			CREATE TRIGGER %s_set_updated_at
			BEFORE UPDATE ON %s
			FOR EACH ROW
			EXECUTE PROCEDURE sqlmirror_set_updated_at();`, table, table),
		Down: fmt.Sprintf("DROP TRIGGER IF EXISTS %s_set_updated_at ON %s;", table, table),
	}
}

// BuiltinPlugins returns the plugins resolvable by name from declarative
// migration config documents. Callers may copy and extend the map; there is
// no package-level registry.
func BuiltinPlugins() map[string]Plugin {
	return map[string]Plugin{
		"timestamps": TimestampsPlugin(),
	}
}
