// Package db provides the flatdb execution engine.
//
// The Engine type is the statement-execution entry point: it parses
// query text, validates identifiers and arities against the catalog,
// and dispatches to the storage and index layers.
//
// # Engine Usage
//
//	persistence, _ := ps.NewMemoryPersistence()
//	engine := db.NewEngine(&persistence)
//	result, err := engine.Execute("SELECT * FROM users WHERE id = 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Execution Model
//
// Every mutating statement loads the entire table, applies the change
// in memory and persists the whole table atomically; a failure at any
// point leaves the previously committed content untouched. Single-table
// selects with a primary-key equality predicate route through the
// index; two-table selects run a nested-loop join.
package db
