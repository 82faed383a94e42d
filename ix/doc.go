// Package ix implements flatdb's primary-key index: a per-table hash map
// from primary-key value to row position, giving O(1) expected equality
// lookup in place of a full scan.
//
// Indexes are derived from the persisted row set and never written to
// disk; the Registry rebuilds them on first use after open and keeps
// them consistent with writes within each logical operation. One
// Registry serves one storage: entries are row positions, so engines
// sharing files must share the cache.
package ix
