package flatdb

import (
	"fmt"
	"slices"
	"testing"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/db"
	"github.com/flatdb/flatdb/ps"
)

// TestFunc is the signature for test functions that work with any persistence
type TestFunc func(t *testing.T, engine *db.Engine)

// runWithBothPersistence runs a test function with both memory and file persistence
func runWithBothPersistence(t *testing.T, testFunc TestFunc) {
	t.Run("Memory", func(t *testing.T) {
		persistence, err := ps.NewMemoryPersistence()
		if err != nil {
			t.Fatalf("Failed to initialize memory persistence: %v", err)
		}
		testFunc(t, Open(&persistence).Engine())
	})

	t.Run("File", func(t *testing.T) {
		persistence, err := ps.NewFilePersistence(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to initialize file persistence: %v", err)
		}
		testFunc(t, Open(&persistence).Engine())
	})
}

// TestIntegrationWorkflow exercises a complete workflow from schema
// definition through queries, mutations and teardown.
func TestIntegrationWorkflow(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, engine *db.Engine) {

		// Define schemas
		_, err := engine.Execute("CREATE TABLE employees (id Int, name String, department String, salary Float) PRIMARY KEY id")
		if err != nil {
			t.Fatalf("Failed to create employees table: %v", err)
		}
		_, err = engine.Execute("CREATE TABLE departments (name String, building String) PRIMARY KEY name")
		if err != nil {
			t.Fatalf("Failed to create departments table: %v", err)
		}

		var names []string
		for name, err := range engine.Persistence().ListTables() {
			if err != nil {
				t.Fatalf("ListTables failed: %v", err)
			}
			names = append(names, name)
		}
		if !slices.Equal(names, []string{"departments", "employees"}) {
			t.Errorf("Expected both tables listed, got %v", names)
		}

		// Populate
		inserts := []string{
			"INSERT INTO employees VALUES (1, 'Alice', 'Engineering', 95000.0)",
			"INSERT INTO employees VALUES (2, 'Bob', 'Sales', 60000.0)",
			"INSERT INTO employees VALUES (3, 'Carol', 'Engineering', 105000.0)",
			"INSERT INTO departments VALUES ('Engineering', 'North')",
			"INSERT INTO departments VALUES ('Sales', 'South')",
		}
		for _, insert := range inserts {
			result, err := engine.Execute(insert)
			if err != nil {
				t.Fatalf("Failed to insert: %v", err)
			}
			if result.AffectedCount != 1 {
				t.Errorf("Expected 1 affected row, got %d", result.AffectedCount)
			}
		}

		// Query with a filter
		result, err := engine.Execute("SELECT * FROM employees WHERE department = 'Engineering' AND salary > 100000")
		if err != nil {
			t.Fatalf("Failed to select: %v", err)
		}
		if len(result.Rows) != 1 || result.Rows[0][1].Str != "Carol" {
			t.Errorf("Expected only Carol, got %v", result.Rows)
		}

		// Join employees to their departments
		result, err = engine.Execute("SELECT * FROM employees, departments WHERE employees.department = departments.name")
		if err != nil {
			t.Fatalf("Failed to join: %v", err)
		}
		if len(result.Rows) != 3 {
			t.Errorf("Expected 3 joined rows, got %d", len(result.Rows))
		}

		// Mutate and verify
		if _, err := engine.Execute("UPDATE employees SET salary = 70000.0 WHERE id = 2"); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		result, err = engine.Execute("SELECT * FROM employees WHERE id = 2")
		if err != nil {
			t.Fatalf("Failed to select after update: %v", err)
		}
		if result.Rows[0][3].Flt64 != 70000.0 {
			t.Errorf("Expected updated salary, got %v", result.Rows[0][3])
		}

		if _, err := engine.Execute("DELETE FROM employees WHERE department = 'Sales'"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		result, err = engine.Execute("SELECT * FROM employees")
		if err != nil {
			t.Fatalf("Failed to select after delete: %v", err)
		}
		if len(result.Rows) != 2 {
			t.Errorf("Expected 2 employees after delete, got %d", len(result.Rows))
		}

		// Teardown
		if _, err := engine.Execute("DROP TABLE departments"); err != nil {
			t.Fatalf("Failed to drop table: %v", err)
		}
		if _, err := engine.Execute("SELECT * FROM departments"); !core.IsKind(err, core.SchemaError) {
			t.Errorf("Expected SchemaError after drop, got %v", err)
		}
	})
}

// TestSeparateEngineHandles verifies that every engine an instance hands
// out observes mutations made through the others, including stale
// primary-key lookups after a delete shifts row positions.
func TestSeparateEngineHandles(t *testing.T) {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to initialize memory persistence: %v", err)
	}
	instance := Open(&persistence)
	writer := instance.Engine()
	reader := instance.Engine()

	if _, err := writer.Execute("CREATE TABLE notes (id Int, body String) PRIMARY KEY id"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for i := 1; i <= 3; i++ {
		insert := fmt.Sprintf("INSERT INTO notes VALUES (%d, 'note %d')", i, i)
		if _, err := writer.Execute(insert); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}

	// Warm the reader's lookup path, then shift positions via the writer.
	if _, err := reader.Execute("SELECT * FROM notes WHERE id = 1"); err != nil {
		t.Fatalf("Failed to select: %v", err)
	}
	if _, err := writer.Execute("DELETE FROM notes WHERE id = 1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	result, err := reader.Execute("SELECT * FROM notes WHERE id = 2")
	if err != nil {
		t.Fatalf("Failed to select after delete: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][1].Str != "note 2" {
		t.Errorf("Expected note 2, got %v", result.Rows)
	}
}

// TestDataSurvivesReopen verifies that committed rows are readable by a
// fresh instance over the same directory.
func TestDataSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	persistence, err := ps.NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to initialize file persistence: %v", err)
	}
	engine := Open(&persistence).Engine()

	if _, err := engine.Execute("CREATE TABLE notes (id Int, body String) PRIMARY KEY id"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for i := 1; i <= 5; i++ {
		insert := fmt.Sprintf("INSERT INTO notes VALUES (%d, 'note %d')", i, i)
		if _, err := engine.Execute(insert); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}

	reopened, err := ps.NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	fresh := Open(&reopened).Engine()

	result, err := fresh.Execute("SELECT * FROM notes WHERE id = 3")
	if err != nil {
		t.Fatalf("Failed to select after reopen: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][1].Str != "note 3" {
		t.Errorf("Expected note 3, got %v", result.Rows)
	}
}
