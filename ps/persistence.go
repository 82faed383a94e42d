package ps

import (
	"io"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/ix"
)

const (
	catalogFile = "catalog.json"
	tablesDir   = "tables"
)

// Persistence owns the backing filesystem: the schema catalog and one
// row file per table. All writes go through an atomic
// write-temp-then-rename commit, so readers observe either the fully-old
// or the fully-new content of a file, never a partial write.
type Persistence struct {
	fs billy.Filesystem

	catalogMu sync.Mutex

	mu         sync.Mutex
	tableLocks map[string]*sync.Mutex

	indexes *ix.Registry
}

// NewPersistence wraps an arbitrary billy filesystem. Used directly by
// tests that inject failing filesystems.
func NewPersistence(fs billy.Filesystem) Persistence {
	return Persistence{
		fs:         fs,
		tableLocks: make(map[string]*sync.Mutex),
		indexes:    ix.NewRegistry(),
	}
}

// Indexes returns the primary-key index registry bound to this storage.
// Index entries are row positions in the backing files, so the cache
// must be shared by every engine reading the same files.
func (persistence *Persistence) Indexes() *ix.Registry {
	return persistence.indexes
}

func NewMemoryPersistence() (Persistence, error) {
	return NewPersistence(memfs.New()), nil
}

func NewFilePersistence(baseDir string) (Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return Persistence{}, core.NewIOError(err, "creating data directory %q", baseDir)
	}
	return NewPersistence(osfs.New(baseDir)), nil
}

// LockTable acquires the exclusive lock for one table and returns the
// release function. The lock must be held for the whole
// load-modify-persist cycle of a mutating statement.
func (persistence *Persistence) LockTable(name string) (unlock func()) {
	persistence.mu.Lock()
	lock, ok := persistence.tableLocks[name]
	if !ok {
		lock = &sync.Mutex{}
		persistence.tableLocks[name] = lock
	}
	persistence.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (persistence *Persistence) tablePath(name string) string {
	return persistence.fs.Join(tablesDir, name+".json")
}

func (persistence *Persistence) readFile(path string) ([]byte, error) {
	f, err := persistence.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeFileAtomic writes data to path via a temp file and a rename. A
// failure at any step removes the temp file and leaves the previously
// committed content of path untouched.
func (persistence *Persistence) writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := persistence.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		persistence.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		persistence.fs.Remove(tmp)
		return err
	}
	if err := persistence.fs.Rename(tmp, path); err != nil {
		persistence.fs.Remove(tmp)
		return err
	}
	return nil
}
