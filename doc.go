// Package flatdb provides a minimal flat-file relational database engine.
//
// flatdb persists each table as a single JSON file committed with an
// atomic write-temp-then-rename discipline, keeps a schema catalog as
// the single source of truth for table shape, and serves primary-key
// equality lookups from an in-memory hash index rebuilt from storage.
//
// # Quick Start
//
// Create an in-memory database:
//
//	persistence, _ := ps.NewMemoryPersistence()
//	instance := flatdb.Open(&persistence)
//	engine := instance.Engine()
//
//	engine.Execute("CREATE TABLE users (id Int, name String) PRIMARY KEY id")
//	engine.Execute("INSERT INTO users VALUES (1, 'Alice')")
//
//	result, _ := engine.Execute("SELECT * FROM users")
//	result.Display()
//
// # Supported SQL
//
// flatdb supports a restricted SQL subset:
//   - CREATE TABLE ... PRIMARY KEY / DROP TABLE
//   - INSERT, SELECT, UPDATE, DELETE
//   - Column projection (SELECT name, id FROM users)
//   - WHERE with comparison operators, combined by AND
//   - Two-table nested-loop joins (SELECT * FROM a, b WHERE a.col = b.col)
//
// Statements either fully apply or leave the table exactly as it was;
// failures return a typed *core.Error (SyntaxError, SchemaError,
// ConstraintError or IOError).
package flatdb
