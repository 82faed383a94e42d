// Package ps provides flatdb's persistence layer: the schema catalog and
// per-table row storage over a billy filesystem.
//
// A Persistence is backed by either an in-memory filesystem
// (NewMemoryPersistence) or a directory on disk (NewFilePersistence).
// The layout is one catalog.json mapping table name to schema, and one
// tables/<name>.json per table holding the full ordered row set as a
// JSON array of column-keyed objects.
//
// # Commit Discipline
//
// Every write goes through write-temp-then-rename: the new version is
// fully written to a temporary file and made visible in a single rename.
// A crash during the write leaves the previously committed version
// intact. There is no incremental or appended write; mutating statements
// load the entire table, change it in memory and persist it whole.
//
// # Locking
//
// LockTable hands out a per-table exclusive lock that callers hold for
// the full load-modify-persist cycle, giving last-writer-wins semantics
// when the engine is driven from multiple goroutines.
package ps
