package ps

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/flatdb/flatdb/core"
)

// LoadTable deserializes a table's full row set, validating every stored
// value against the schema. Missing or corrupt backing data fails with
// IOError.
func (persistence *Persistence) LoadTable(table core.Table) ([]core.Row, error) {
	data, err := persistence.readFile(persistence.tablePath(table.Name))
	if err != nil {
		return nil, core.NewIOError(err, "reading table %q", table.Name)
	}

	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, core.NewIOError(err, "corrupt table %q", table.Name)
	}

	rows := make([]core.Row, 0, len(objects))
	for _, object := range objects {
		row, err := core.DecodeRow(table, object)
		if err != nil {
			return nil, core.NewIOError(err, "corrupt table %q", table.Name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PersistTable serializes the complete row set and commits it
// atomically: a reader concurrent with the write, or one arriving after
// a crash mid-write, sees either the fully-old or fully-new content.
func (persistence *Persistence) PersistTable(table core.Table, rows []core.Row) error {
	objects := make([]map[string]core.Value, 0, len(rows))
	for _, row := range rows {
		object, err := core.EncodeRow(table, row)
		if err != nil {
			return core.NewIOError(err, "encoding table %q", table.Name)
		}
		objects = append(objects, object)
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return core.NewIOError(err, "encoding table %q", table.Name)
	}

	if err := persistence.writeFileAtomic(persistence.tablePath(table.Name), data); err != nil {
		return core.NewIOError(err, "writing table %q", table.Name)
	}
	return nil
}

func (persistence *Persistence) createTableFile(name string) error {
	if err := persistence.fs.MkdirAll(tablesDir, 0755); err != nil {
		return core.NewIOError(err, "creating tables directory")
	}

	path := persistence.tablePath(name)
	if _, err := persistence.fs.Stat(path); err == nil {
		return core.NewSchemaError("table file for %q already exists", name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return core.NewIOError(err, "checking table %q", name)
	}

	if err := persistence.writeFileAtomic(path, []byte("[]")); err != nil {
		return core.NewIOError(err, "initializing table %q", name)
	}
	return nil
}

func (persistence *Persistence) removeTableFile(name string) error {
	err := persistence.fs.Remove(persistence.tablePath(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return core.NewIOError(err, "removing table %q", name)
	}
	return nil
}
