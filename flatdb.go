package flatdb

import (
	"github.com/flatdb/flatdb/db"
	"github.com/flatdb/flatdb/ps"
)

type Instance struct {
	Persistence *ps.Persistence
}

func Open(persistence *ps.Persistence) *Instance {
	return &Instance{
		Persistence: persistence,
	}
}

// Engine returns a new execution engine over the instance's storage.
// Engines are cheap; all of them share the persistence layer's locks
// and index registry.
func (instance *Instance) Engine() *db.Engine {
	return db.NewEngine(instance.Persistence)
}
