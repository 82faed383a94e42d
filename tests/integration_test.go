package tests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/flatdb/flatdb"
	"github.com/flatdb/flatdb/db"
	"github.com/flatdb/flatdb/ps"
)

func setupFileEngine(t *testing.T) (*db.Engine, string) {
	t.Helper()

	dir := t.TempDir()
	persistence, err := ps.NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to initialize persistence: %v", err)
	}
	return flatdb.Open(&persistence).Engine(), dir
}

// TestOnDiskLayout checks the committed file format: a JSON catalog at
// the root and one JSON array per table under tables/.
func TestOnDiskLayout(t *testing.T) {
	engine, dir := setupFileEngine(t)

	mustRun(t, engine, "CREATE TABLE users (id Int, name String) PRIMARY KEY id")
	mustRun(t, engine, "INSERT INTO users VALUES (1, 'Alice')")

	catalogData, err := os.ReadFile(filepath.Join(dir, "catalog.json"))
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}
	var catalog map[string]struct {
		Name       string `json:"name"`
		PrimaryKey string `json:"primaryKey"`
	}
	if err := json.Unmarshal(catalogData, &catalog); err != nil {
		t.Fatalf("Catalog is not valid JSON: %v", err)
	}
	if catalog["users"].PrimaryKey != "id" {
		t.Errorf("Unexpected catalog entry: %+v", catalog["users"])
	}

	tableData, err := os.ReadFile(filepath.Join(dir, "tables", "users.json"))
	if err != nil {
		t.Fatalf("Failed to read table file: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(tableData, &rows); err != nil {
		t.Fatalf("Table file is not a JSON array: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Alice" {
		t.Errorf("Unexpected table contents: %v", rows)
	}

	// No leftover temp files from the atomic commits.
	entries, err := os.ReadDir(filepath.Join(dir, "tables"))
	if err != nil {
		t.Fatalf("Failed to list tables dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("Leftover temp file: %s", entry.Name())
		}
	}
}

// TestConcurrentInserts hammers one table from many goroutines; the
// per-table lock must serialize the load-modify-persist cycles so every
// insert survives.
func TestConcurrentInserts(t *testing.T) {
	engine, _ := setupFileEngine(t)

	mustRun(t, engine, "CREATE TABLE events (id Int, source String) PRIMARY KEY id")

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := w*perWorker + i
				insert := fmt.Sprintf("INSERT INTO events VALUES (%d, 'worker-%d')", id, w)
				if _, err := engine.Execute(insert); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent insert failed: %v", err)
	}

	result, err := engine.Execute("SELECT * FROM events")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(result.Rows) != workers*perWorker {
		t.Errorf("Expected %d rows, got %d", workers*perWorker, len(result.Rows))
	}
}

// TestConcurrentReadersAndWriter runs full-table reads concurrently with
// updates. Atomic commits mean a reader never observes a partial write;
// every load either succeeds or the test fails.
func TestConcurrentReadersAndWriter(t *testing.T) {
	engine, _ := setupFileEngine(t)

	mustRun(t, engine, "CREATE TABLE counters (id Int, value Int) PRIMARY KEY id")
	for i := 1; i <= 20; i++ {
		mustRun(t, engine, fmt.Sprintf("INSERT INTO counters VALUES (%d, 0)", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 30; i++ {
			update := fmt.Sprintf("UPDATE counters SET value = %d WHERE id = %d", i, 1+i%20)
			if _, err := engine.Execute(update); err != nil {
				errs <- err
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				result, err := engine.Execute("SELECT * FROM counters")
				if err != nil {
					errs <- err
					continue
				}
				if len(result.Rows) != 20 {
					errs <- fmt.Errorf("partial read: %d rows", len(result.Rows))
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func mustRun(t *testing.T, engine *db.Engine, query string) {
	t.Helper()

	if _, err := engine.Execute(query); err != nil {
		t.Fatalf("Execute %q failed: %v", query, err)
	}
}
