package ix

import (
	"sync"

	"github.com/flatdb/flatdb/core"
)

// Index maps a table's primary-key values to row positions. It is
// derived data: rebuildable from the row set at any time and never
// persisted, never the source of truth for row content. Lookups may run
// concurrently with mutations, so the entry map is guarded.
type Index struct {
	Table  string
	Column string

	mu      sync.RWMutex
	entries map[string]int
}

// Build scans the row set once and produces a fresh index. Duplicate
// primary-key values in the input fail with ConstraintError.
func Build(table core.Table, rows []core.Row) (*Index, error) {
	pkIndex := table.PrimaryKeyIndex()
	if pkIndex < 0 {
		return nil, core.NewSchemaError("primary key %q is not a column of table %q", table.PrimaryKey, table.Name)
	}

	index := &Index{
		Table:   table.Name,
		Column:  table.PrimaryKey,
		entries: make(map[string]int, len(rows)),
	}

	for position, row := range rows {
		key := row[pkIndex].Key()
		if _, exists := index.entries[key]; exists {
			return nil, core.NewConstraintError("duplicate primary key %v in table %q", row[pkIndex], table.Name)
		}
		index.entries[key] = position
	}

	return index, nil
}

// Lookup returns the row position for a primary-key value.
func (index *Index) Lookup(value core.Value) (position int, ok bool) {
	index.mu.RLock()
	position, ok = index.entries[value.Key()]
	index.mu.RUnlock()
	return
}

// Insert adds an entry, failing with ConstraintError if the key is
// already present.
func (index *Index) Insert(value core.Value, position int) error {
	index.mu.Lock()
	defer index.mu.Unlock()

	key := value.Key()
	if _, exists := index.entries[key]; exists {
		return core.NewConstraintError("duplicate primary key %v in table %q", value, index.Table)
	}
	index.entries[key] = position
	return nil
}

// Delete removes an entry. Positions of later rows shift when the row
// set is compacted, so callers rebuilding after a delete discard the
// index instead of patching it.
func (index *Index) Delete(value core.Value) {
	index.mu.Lock()
	delete(index.entries, value.Key())
	index.mu.Unlock()
}

func (index *Index) Len() int {
	index.mu.RLock()
	defer index.mu.RUnlock()
	return len(index.entries)
}

// Registry caches one index per table for the lifetime of a process.
// Indexes are built on first use and invalidated when the table is
// dropped or its row positions change.
type Registry struct {
	mu      sync.Mutex
	indexes map[string]*Index
}

func NewRegistry() *Registry {
	return &Registry{indexes: make(map[string]*Index)}
}

// Get returns the cached index for a table, building one from the given
// rows on a miss.
func (registry *Registry) Get(table core.Table, rows []core.Row) (*Index, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if index, ok := registry.indexes[table.Name]; ok {
		return index, nil
	}

	index, err := Build(table, rows)
	if err != nil {
		return nil, err
	}
	registry.indexes[table.Name] = index
	return index, nil
}

// Rebuild replaces the cached index for a table from the given rows.
func (registry *Registry) Rebuild(table core.Table, rows []core.Row) (*Index, error) {
	index, err := Build(table, rows)
	if err != nil {
		return nil, err
	}

	registry.mu.Lock()
	registry.indexes[table.Name] = index
	registry.mu.Unlock()
	return index, nil
}

// Drop discards the cached index for a table.
func (registry *Registry) Drop(table string) {
	registry.mu.Lock()
	delete(registry.indexes, table)
	registry.mu.Unlock()
}
