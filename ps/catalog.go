package ps

import (
	"encoding/json"
	"iter"
	"os"
	"sort"
	"strings"

	"github.com/flatdb/flatdb/core"
)

// DefineTable records a new table schema in the catalog and initializes
// its empty row file. The catalog entry is rolled back if storage
// initialization fails, keeping catalog and data files consistent.
func (persistence *Persistence) DefineTable(table core.Table) error {
	if err := validateTableDefinition(table); err != nil {
		return err
	}

	persistence.catalogMu.Lock()
	defer persistence.catalogMu.Unlock()

	catalog, err := persistence.loadCatalog()
	if err != nil {
		return err
	}

	if _, exists := catalog[table.Name]; exists {
		return core.NewSchemaError("table %q already exists", table.Name)
	}

	catalog[table.Name] = table
	if err := persistence.saveCatalog(catalog); err != nil {
		return err
	}

	if err := persistence.createTableFile(table.Name); err != nil {
		delete(catalog, table.Name)
		if rollbackErr := persistence.saveCatalog(catalog); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return nil
}

// GetTable looks up a schema by table name.
func (persistence *Persistence) GetTable(name string) (*core.Table, error) {
	persistence.catalogMu.Lock()
	defer persistence.catalogMu.Unlock()

	catalog, err := persistence.loadCatalog()
	if err != nil {
		return nil, err
	}

	table, exists := catalog[name]
	if !exists {
		return nil, core.NewSchemaError("table %q not found", name)
	}
	return &table, nil
}

// DropTable removes the catalog entry and the table's row file as one
// logical unit.
func (persistence *Persistence) DropTable(name string) error {
	persistence.catalogMu.Lock()
	defer persistence.catalogMu.Unlock()

	catalog, err := persistence.loadCatalog()
	if err != nil {
		return err
	}

	if _, exists := catalog[name]; !exists {
		return core.NewSchemaError("table %q not found", name)
	}

	if err := persistence.removeTableFile(name); err != nil {
		return err
	}

	delete(catalog, name)
	return persistence.saveCatalog(catalog)
}

// ListTables produces a lazy, restartable sequence of table names,
// sorted so the order is stable within a process run. A catalog read
// failure is yielded once as the error element, so an unreadable
// catalog is distinguishable from an empty one.
func (persistence *Persistence) ListTables() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		persistence.catalogMu.Lock()
		catalog, err := persistence.loadCatalog()
		persistence.catalogMu.Unlock()
		if err != nil {
			yield("", err)
			return
		}

		names := make([]string, 0, len(catalog))
		for name := range catalog {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}

func validateTableDefinition(table core.Table) error {
	if table.Name == "" || strings.Contains(table.Name, ".") {
		return core.NewSchemaError("invalid table name %q", table.Name)
	}
	if len(table.Columns) == 0 {
		return core.NewSchemaError("table %q has no columns", table.Name)
	}

	seen := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		if col.Name == "" || strings.Contains(col.Name, ".") {
			return core.NewSchemaError("invalid column name %q in table %q", col.Name, table.Name)
		}
		if seen[col.Name] {
			return core.NewSchemaError("duplicate column %q in table %q", col.Name, table.Name)
		}
		seen[col.Name] = true
	}

	if table.PrimaryKeyIndex() < 0 {
		return core.NewSchemaError("primary key %q is not a column of table %q", table.PrimaryKey, table.Name)
	}
	return nil
}

func (persistence *Persistence) loadCatalog() (map[string]core.Table, error) {
	data, err := persistence.readFile(catalogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]core.Table), nil
		}
		return nil, core.NewIOError(err, "reading catalog")
	}

	var catalog map[string]core.Table
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, core.NewIOError(err, "corrupt catalog")
	}
	if catalog == nil {
		catalog = make(map[string]core.Table)
	}
	return catalog, nil
}

func (persistence *Persistence) saveCatalog(catalog map[string]core.Table) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return core.NewIOError(err, "encoding catalog")
	}
	if err := persistence.writeFileAtomic(catalogFile, data); err != nil {
		return core.NewIOError(err, "writing catalog")
	}
	return nil
}
