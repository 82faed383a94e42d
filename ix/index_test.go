package ix

import (
	"testing"

	"github.com/flatdb/flatdb/core"
)

func testTable() core.Table {
	return core.Table{
		Name: "users",
		Columns: []core.Column{
			{Name: "id", Type: core.IntType},
			{Name: "name", Type: core.StringType},
		},
		PrimaryKey: "id",
	}
}

func testRows() []core.Row {
	return []core.Row{
		{core.NewInt(1), core.NewString("Alice")},
		{core.NewInt(2), core.NewString("Bob")},
		{core.NewInt(3), core.NewString("Carol")},
	}
}

func TestBuildAndLookup(t *testing.T) {
	index, err := Build(testTable(), testRows())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if index.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", index.Len())
	}

	position, ok := index.Lookup(core.NewInt(2))
	if !ok || position != 1 {
		t.Errorf("Expected position 1, got %d (ok=%v)", position, ok)
	}

	if _, ok := index.Lookup(core.NewInt(99)); ok {
		t.Error("Expected miss for absent key")
	}
}

func TestBuildDuplicateKey(t *testing.T) {
	rows := append(testRows(), core.Row{core.NewInt(1), core.NewString("Dave")})
	if _, err := Build(testTable(), rows); !core.IsKind(err, core.ConstraintError) {
		t.Errorf("Expected ConstraintError, got %v", err)
	}
}

func TestInsertAndDelete(t *testing.T) {
	index, err := Build(testTable(), testRows())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := index.Insert(core.NewInt(4), 3); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := index.Insert(core.NewInt(4), 9); !core.IsKind(err, core.ConstraintError) {
		t.Errorf("Expected ConstraintError on duplicate insert, got %v", err)
	}

	index.Delete(core.NewInt(4))
	if _, ok := index.Lookup(core.NewInt(4)); ok {
		t.Error("Expected key to be gone after delete")
	}
}

func TestLookupWidenedKey(t *testing.T) {
	table := core.Table{
		Name:       "points",
		Columns:    []core.Column{{Name: "x", Type: core.FloatType}},
		PrimaryKey: "x",
	}
	index, err := Build(table, []core.Row{{core.NewFloat(2.0)}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// An integer literal probing a Float primary key must widen before
	// the lookup so both sides produce the same key.
	if _, ok := index.Lookup(core.NewInt(2).Widen(core.FloatType)); !ok {
		t.Error("Expected widened probe to hit")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	table := testTable()

	index, err := registry.Get(table, testRows())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// A second Get serves the cached index even with different rows.
	cached, err := registry.Get(table, nil)
	if err != nil {
		t.Fatalf("Cached Get failed: %v", err)
	}
	if cached != index {
		t.Error("Expected cached index on second Get")
	}

	rebuilt, err := registry.Rebuild(table, testRows()[:1])
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if rebuilt == index || rebuilt.Len() != 1 {
		t.Error("Expected Rebuild to replace the cached index")
	}

	registry.Drop(table.Name)
	fresh, err := registry.Get(table, testRows())
	if err != nil {
		t.Fatalf("Get after Drop failed: %v", err)
	}
	if fresh == rebuilt {
		t.Error("Expected a fresh build after Drop")
	}
}
