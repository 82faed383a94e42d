package db

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/ix"
	"github.com/flatdb/flatdb/ps"
	"github.com/flatdb/flatdb/sql"
)

// Engine executes statements against the catalog, storage and index
// layers. Any number of engines may share one Persistence; they all use
// its index registry, and mutating statements run one at a time per
// table under the persistence layer's table locks.
type Engine struct {
	persistence *ps.Persistence
	indexes     *ix.Registry
	logger      zerolog.Logger
}

func NewEngine(persistence *ps.Persistence) *Engine {
	return &Engine{
		persistence: persistence,
		indexes:     persistence.Indexes(),
		logger:      zerolog.Nop(),
	}
}

// WithLogger attaches a logger for statement tracing.
func (engine *Engine) WithLogger(logger zerolog.Logger) *Engine {
	engine.logger = logger
	return engine
}

// Persistence exposes the underlying persistence layer to thin callers
// (table listings in the REPL, for example).
func (engine *Engine) Persistence() *ps.Persistence {
	return engine.persistence
}

// Execute parses and runs one statement, returning its result or a
// typed *core.Error. No statement partially applies: either the full
// transformation is persisted or the table is left as it was.
func (engine *Engine) Execute(query string) (Result, error) {
	start := time.Now()

	parser := sql.NewParser(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	statement, err := parser.Parse()
	if err != nil {
		return Result{}, err
	}

	var result Result
	switch statement.Type() {
	case sql.SelectStatementType:
		result, err = engine.executeSelect(statement.(sql.SelectStatement))
	case sql.InsertStatementType:
		result, err = engine.executeInsert(statement.(sql.InsertStatement))
	case sql.UpdateStatementType:
		result, err = engine.executeUpdate(statement.(sql.UpdateStatement))
	case sql.DeleteStatementType:
		result, err = engine.executeDelete(statement.(sql.DeleteStatement))
	case sql.CreateTableStatementType:
		result, err = engine.executeCreateTable(statement.(sql.CreateTableStatement))
	case sql.DropTableStatementType:
		result, err = engine.executeDropTable(statement.(sql.DropTableStatement))
	default:
		return Result{}, core.NewSyntaxError(0, "unsupported statement")
	}
	if err != nil {
		engine.logger.Debug().Err(err).Str("query", query).Msg("statement failed")
		return Result{}, err
	}

	result.ExecutionTimeSec = time.Since(start).Seconds()
	engine.logger.Debug().
		Str("query", query).
		Int("rows", len(result.Rows)).
		Int("affected", result.AffectedCount).
		Dur("elapsed", time.Since(start)).
		Msg("statement executed")
	return result, nil
}

func (engine *Engine) executeCreateTable(statement sql.CreateTableStatement) (Result, error) {
	table := core.Table{
		Name:       statement.Table,
		Columns:    statement.Columns,
		PrimaryKey: statement.PrimaryKey,
	}

	if err := engine.persistence.DefineTable(table); err != nil {
		return Result{}, err
	}

	if _, err := engine.indexes.Rebuild(table, nil); err != nil {
		return Result{}, err
	}

	return Result{}, nil
}

func (engine *Engine) executeDropTable(statement sql.DropTableStatement) (Result, error) {
	unlock := engine.persistence.LockTable(statement.Table)
	defer unlock()

	if err := engine.persistence.DropTable(statement.Table); err != nil {
		return Result{}, err
	}

	engine.indexes.Drop(statement.Table)
	return Result{}, nil
}

func (engine *Engine) executeInsert(statement sql.InsertStatement) (Result, error) {
	table, err := engine.persistence.GetTable(statement.Table)
	if err != nil {
		return Result{}, err
	}

	if len(statement.Values) != len(table.Columns) {
		return Result{}, core.NewConstraintError("table %q has %d columns, got %d values",
			table.Name, len(table.Columns), len(statement.Values))
	}

	row := make(core.Row, len(table.Columns))
	for i, column := range table.Columns {
		value := statement.Values[i]
		if !value.ConformsTo(column.Type) {
			return Result{}, core.NewConstraintError("column %q expects %s, got %s",
				column.Name, column.Type, value.Type)
		}
		row[i] = value.Widen(column.Type)
	}

	unlock := engine.persistence.LockTable(table.Name)
	defer unlock()

	rows, err := engine.persistence.LoadTable(*table)
	if err != nil {
		return Result{}, err
	}

	pk := row[table.PrimaryKeyIndex()]
	index, _, exists, err := engine.indexProbe(*table, rows, pk)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return Result{}, core.NewConstraintError("duplicate primary key %v in table %q", pk, table.Name)
	}

	rows = append(rows, row)
	if err := engine.persistence.PersistTable(*table, rows); err != nil {
		return Result{}, err
	}

	if err := index.Insert(pk, len(rows)-1); err != nil {
		return Result{}, err
	}

	return Result{AffectedCount: 1}, nil
}

func (engine *Engine) executeUpdate(statement sql.UpdateStatement) (Result, error) {
	table, err := engine.persistence.GetTable(statement.Table)
	if err != nil {
		return Result{}, err
	}

	// Resolve and type-check SET clauses before touching the table.
	type boundSet struct {
		columnIndex int
		value       core.Value
	}
	sets := make([]boundSet, 0, len(statement.Sets))
	for _, set := range statement.Sets {
		position := table.ColumnIndex(set.Column)
		if position < 0 {
			return Result{}, core.NewSchemaError("unknown column %q in table %q", set.Column, table.Name)
		}
		column := table.Columns[position]
		if !set.Value.ConformsTo(column.Type) {
			return Result{}, core.NewConstraintError("column %q expects %s, got %s",
				column.Name, column.Type, set.Value.Type)
		}
		sets = append(sets, boundSet{columnIndex: position, value: set.Value.Widen(column.Type)})
	}

	conditions, err := bindConditions([]core.Table{*table}, statement.Where)
	if err != nil {
		return Result{}, err
	}

	unlock := engine.persistence.LockTable(table.Name)
	defer unlock()

	rows, err := engine.persistence.LoadTable(*table)
	if err != nil {
		return Result{}, err
	}

	matches, err := engine.matchPositions(*table, rows, conditions)
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{}, nil
	}

	// Changing a row's primary-key value is disallowed: re-keying the
	// index mid-statement is ambiguous, so surface ConstraintError
	// before any change is applied.
	pkIndex := table.PrimaryKeyIndex()
	for _, set := range sets {
		if set.columnIndex != pkIndex {
			continue
		}
		for _, position := range matches {
			if !rows[position][pkIndex].Equal(set.value) {
				return Result{}, core.NewConstraintError("cannot change primary key %q of table %q",
					table.PrimaryKey, table.Name)
			}
		}
	}

	for _, position := range matches {
		for _, set := range sets {
			rows[position][set.columnIndex] = set.value
		}
	}

	if err := engine.persistence.PersistTable(*table, rows); err != nil {
		return Result{}, err
	}

	return Result{AffectedCount: len(matches)}, nil
}

func (engine *Engine) executeDelete(statement sql.DeleteStatement) (Result, error) {
	table, err := engine.persistence.GetTable(statement.Table)
	if err != nil {
		return Result{}, err
	}

	conditions, err := bindConditions([]core.Table{*table}, statement.Where)
	if err != nil {
		return Result{}, err
	}

	unlock := engine.persistence.LockTable(table.Name)
	defer unlock()

	rows, err := engine.persistence.LoadTable(*table)
	if err != nil {
		return Result{}, err
	}

	matches, err := engine.matchPositions(*table, rows, conditions)
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{}, nil
	}

	matched := make(map[int]bool, len(matches))
	for _, position := range matches {
		matched[position] = true
	}

	kept := make([]core.Row, 0, len(rows)-len(matches))
	for position, row := range rows {
		if !matched[position] {
			kept = append(kept, row)
		}
	}

	if err := engine.persistence.PersistTable(*table, kept); err != nil {
		return Result{}, err
	}

	// Row positions shift after a delete, so the cached index is
	// rebuilt from the surviving rows.
	if _, err := engine.indexes.Rebuild(*table, kept); err != nil {
		return Result{}, err
	}

	return Result{AffectedCount: len(matches)}, nil
}

// indexProbe serves a primary-key lookup from the shared index cache,
// checking that the candidate row really carries the probed key. The
// unlocked read path can race a concurrent mutation, so an out-of-range
// or mismatched entry is discarded by rebuilding from the rows at hand
// before answering.
func (engine *Engine) indexProbe(table core.Table, rows []core.Row, probe core.Value) (*ix.Index, int, bool, error) {
	index, err := engine.indexes.Get(table, rows)
	if err != nil {
		return nil, 0, false, err
	}

	pkIndex := table.PrimaryKeyIndex()
	position, found := index.Lookup(probe)
	if !found {
		return index, 0, false, nil
	}
	if position < len(rows) && rows[position][pkIndex].Equal(probe) {
		return index, position, true, nil
	}

	index, err = engine.indexes.Rebuild(table, rows)
	if err != nil {
		return nil, 0, false, err
	}
	position, found = index.Lookup(probe)
	return index, position, found, nil
}

// matchPositions computes the row positions satisfying all conditions,
// routing a pk-equality conjunct through the index when one exists.
func (engine *Engine) matchPositions(table core.Table, rows []core.Row, conditions []boundCondition) ([]int, error) {
	if probe, rest, ok := primaryKeyProbe(table, conditions); ok {
		_, position, found, err := engine.indexProbe(table, rows, probe)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		if !evaluateAll(rest, []core.Row{rows[position]}) {
			return nil, nil
		}
		return []int{position}, nil
	}

	var matches []int
	for position, row := range rows {
		if evaluateAll(conditions, []core.Row{row}) {
			matches = append(matches, position)
		}
	}
	return matches, nil
}
