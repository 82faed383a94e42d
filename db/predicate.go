package db

import (
	"strings"

	"github.com/flatdb/flatdb/core"
	"github.com/flatdb/flatdb/sql"
)

// boundColumn is a column reference resolved against the tables in
// scope: which table and which position within its schema.
type boundColumn struct {
	tableIndex  int
	columnIndex int
}

// boundCondition is one WHERE conjunct with both sides resolved and
// type-checked, ready for evaluation against rows.
type boundCondition struct {
	left     boundColumn
	operator sql.WhereOperator
	isJoin   bool
	rightCol boundColumn
	value    core.Value
}

// bindConditions resolves every conjunct against the tables in scope.
// With one table, bare column names resolve directly and column
// references on the right side are rejected. With two, names may be
// qualified (table.column); bare names must be unambiguous.
func bindConditions(tables []core.Table, conditions []sql.Condition) ([]boundCondition, error) {
	bound := make([]boundCondition, 0, len(conditions))

	for _, condition := range conditions {
		left, err := resolveColumn(tables, condition.Column)
		if err != nil {
			return nil, err
		}

		b := boundCondition{left: left, operator: condition.Operator}
		leftType := tables[left.tableIndex].Columns[left.columnIndex].Type

		if condition.Right.IsColumn {
			if len(tables) < 2 {
				return nil, core.NewSyntaxError(condition.Pos, "expected literal value, got column %q", condition.Right.Column)
			}
			right, err := resolveColumn(tables, condition.Right.Column)
			if err != nil {
				return nil, err
			}
			rightType := tables[right.tableIndex].Columns[right.columnIndex].Type
			if !comparableTypes(leftType, rightType) {
				return nil, core.NewConstraintError("cannot compare %s column %q to %s column %q",
					leftType, condition.Column, rightType, condition.Right.Column)
			}
			b.isJoin = true
			b.rightCol = right
		} else {
			if !comparableTypes(leftType, condition.Right.Value.Type) {
				return nil, core.NewConstraintError("cannot compare %s column %q to %s value",
					leftType, condition.Column, condition.Right.Value.Type)
			}
			b.value = condition.Right.Value
		}

		bound = append(bound, b)
	}

	return bound, nil
}

// resolveColumn finds the table and position a (possibly qualified)
// column name refers to. Bare names matching more than one table are
// ambiguous.
func resolveColumn(tables []core.Table, name string) (boundColumn, error) {
	if qualifier, column, qualified := strings.Cut(name, "."); qualified {
		for i, t := range tables {
			if t.Name != qualifier {
				continue
			}
			if pos := t.ColumnIndex(column); pos >= 0 {
				return boundColumn{tableIndex: i, columnIndex: pos}, nil
			}
			return boundColumn{}, core.NewSchemaError("unknown column %q in table %q", column, qualifier)
		}
		return boundColumn{}, core.NewSchemaError("unknown table %q in column reference %q", qualifier, name)
	}

	found := boundColumn{tableIndex: -1}
	for i, t := range tables {
		if pos := t.ColumnIndex(name); pos >= 0 {
			if found.tableIndex >= 0 {
				return boundColumn{}, core.NewSchemaError("ambiguous column %q", name)
			}
			found = boundColumn{tableIndex: i, columnIndex: pos}
		}
	}
	if found.tableIndex < 0 {
		return boundColumn{}, core.NewSchemaError("unknown column %q", name)
	}
	return found, nil
}

func comparableTypes(a, b core.ColumnType) bool {
	if a == b {
		return true
	}
	numeric := func(t core.ColumnType) bool { return t == core.IntType || t == core.FloatType }
	return numeric(a) && numeric(b)
}

// evaluate applies one bound condition to the rows in scope, one row per
// table, indexed to match bindConditions' table slice.
func evaluate(condition boundCondition, rows []core.Row) bool {
	left := rows[condition.left.tableIndex][condition.left.columnIndex]

	var right core.Value
	if condition.isJoin {
		right = rows[condition.rightCol.tableIndex][condition.rightCol.columnIndex]
	} else {
		right = condition.value
	}

	cmp, err := left.Compare(right)
	if err != nil {
		return false
	}

	switch condition.operator {
	case sql.EqualsOperator:
		return cmp == 0
	case sql.NotEqualsOperator:
		return cmp != 0
	case sql.LessThanOperator:
		return cmp < 0
	case sql.GreaterThanOperator:
		return cmp > 0
	case sql.LessThanOrEqualOperator:
		return cmp <= 0
	case sql.GreaterThanOrEqualOperator:
		return cmp >= 0
	default:
		return false
	}
}

// evaluateAll reports whether every conjunct holds.
func evaluateAll(conditions []boundCondition, rows []core.Row) bool {
	for _, condition := range conditions {
		if !evaluate(condition, rows) {
			return false
		}
	}
	return true
}

// primaryKeyProbe finds a conjunct of the form pk = literal, the fast
// path the index serves. Returns the probe value and the remaining
// conjuncts.
func primaryKeyProbe(table core.Table, conditions []boundCondition) (probe core.Value, rest []boundCondition, ok bool) {
	pkIndex := table.PrimaryKeyIndex()
	for i, condition := range conditions {
		if condition.isJoin || condition.operator != sql.EqualsOperator {
			continue
		}
		if condition.left.tableIndex != 0 || condition.left.columnIndex != pkIndex {
			continue
		}
		rest = append(rest, conditions[:i]...)
		rest = append(rest, conditions[i+1:]...)
		return condition.value.Widen(table.Columns[pkIndex].Type), rest, true
	}
	return core.Value{}, nil, false
}
