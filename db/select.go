package db

import (
	"slices"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/sql"
)

func (engine *Engine) executeSelect(statement sql.SelectStatement) (Result, error) {
	var result Result
	var err error
	if len(statement.Tables) == 2 {
		result, err = engine.executeJoinSelect(statement)
	} else {
		result, err = engine.executeSingleSelect(statement)
	}
	if err != nil {
		return Result{}, err
	}
	return projectResult(result, statement.Columns)
}

// projectResult narrows the output to the requested columns, in the
// requested order. An empty request keeps every column. Requested names
// are matched against the output schema, so join projections use the
// merged column names.
func projectResult(result Result, columns []string) (Result, error) {
	if len(columns) == 0 {
		return result, nil
	}

	positions := make([]int, len(columns))
	for i, name := range columns {
		position := slices.Index(result.Columns, name)
		if position < 0 {
			return Result{}, core.NewSchemaError("unknown column %q", name)
		}
		positions[i] = position
	}

	projected := make([]core.Row, len(result.Rows))
	for i, row := range result.Rows {
		narrowed := make(core.Row, len(positions))
		for j, position := range positions {
			narrowed[j] = row[position]
		}
		projected[i] = narrowed
	}

	result.Columns = columns
	result.Rows = projected
	return result, nil
}

func (engine *Engine) executeSingleSelect(statement sql.SelectStatement) (Result, error) {
	table, err := engine.persistence.GetTable(statement.Tables[0])
	if err != nil {
		return Result{}, err
	}

	conditions, err := bindConditions([]core.Table{*table}, statement.Where)
	if err != nil {
		return Result{}, err
	}

	rows, err := engine.persistence.LoadTable(*table)
	if err != nil {
		return Result{}, err
	}

	result := Result{Columns: table.ColumnNames(), RecordsRead: len(rows)}

	// A pk-equality conjunct routes through the index instead of a
	// full scan.
	if probe, rest, ok := primaryKeyProbe(*table, conditions); ok {
		_, position, found, err := engine.indexProbe(*table, rows, probe)
		if err != nil {
			return Result{}, err
		}
		result.RecordsRead = 1
		if found && evaluateAll(rest, []core.Row{rows[position]}) {
			result.Rows = append(result.Rows, rows[position])
		}
		return result, nil
	}

	for _, row := range rows {
		if evaluateAll(conditions, []core.Row{row}) {
			result.Rows = append(result.Rows, row)
		}
	}
	return result, nil
}

// executeJoinSelect runs the two-table nested-loop join: every outer row
// is paired with every inner row and the pair is emitted when all
// join and filter conjuncts hold. Output order is outer row order, then
// inner row order; O(n*m) time, no extra memory beyond the result.
//
// Both tables are read independently; there is no cross-table snapshot,
// so a concurrent writer may be reflected in one table and not the
// other. This is an intentional, documented limitation.
func (engine *Engine) executeJoinSelect(statement sql.SelectStatement) (Result, error) {
	outer, err := engine.persistence.GetTable(statement.Tables[0])
	if err != nil {
		return Result{}, err
	}
	inner, err := engine.persistence.GetTable(statement.Tables[1])
	if err != nil {
		return Result{}, err
	}

	conditions, err := bindConditions([]core.Table{*outer, *inner}, statement.Where)
	if err != nil {
		return Result{}, err
	}

	outerRows, err := engine.persistence.LoadTable(*outer)
	if err != nil {
		return Result{}, err
	}
	innerRows, err := engine.persistence.LoadTable(*inner)
	if err != nil {
		return Result{}, err
	}

	columns, combine := joinShape(*outer, *inner)

	result := Result{
		Columns:     columns,
		RecordsRead: len(outerRows) + len(innerRows),
	}

	for _, outerRow := range outerRows {
		for _, innerRow := range innerRows {
			if evaluateAll(conditions, []core.Row{outerRow, innerRow}) {
				result.Rows = append(result.Rows, combine(outerRow, innerRow))
			}
		}
	}

	return result, nil
}

// joinShape computes the merged output schema of a join: the outer
// table's columns followed by the inner columns not named in the outer
// table. On a name collision the inner table's value wins, matching
// map-merge semantics.
func joinShape(outer, inner core.Table) ([]string, func(core.Row, core.Row) core.Row) {
	columns := outer.ColumnNames()

	// For each output position, where the value comes from.
	type source struct {
		fromInner   bool
		columnIndex int
	}
	sources := make([]source, len(outer.Columns))
	for i := range outer.Columns {
		sources[i] = source{columnIndex: i}
	}

	for i, column := range inner.Columns {
		if position := outer.ColumnIndex(column.Name); position >= 0 {
			sources[position] = source{fromInner: true, columnIndex: i}
			continue
		}
		columns = append(columns, column.Name)
		sources = append(sources, source{fromInner: true, columnIndex: i})
	}

	combine := func(outerRow, innerRow core.Row) core.Row {
		combined := make(core.Row, len(sources))
		for i, src := range sources {
			if src.fromInner {
				combined[i] = innerRow[src.columnIndex]
			} else {
				combined[i] = outerRow[src.columnIndex]
			}
		}
		return combined
	}

	return columns, combine
}
