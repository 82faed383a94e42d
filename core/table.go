package core

import (
	"encoding/json"
	"fmt"
)

type ColumnType int

const (
	StringType ColumnType = iota
	IntType
	FloatType
	BoolType
)

var columnTypeNames = map[ColumnType]string{
	StringType: "String",
	IntType:    "Int",
	FloatType:  "Float",
	BoolType:   "Bool",
}

var columnTypesByName = map[string]ColumnType{
	"String": StringType,
	"Int":    IntType,
	"Float":  FloatType,
	"Bool":   BoolType,
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType resolves a type name from query text. Names are
// case-sensitive on the first letter only in the original grammar, so
// normalize before lookup.
func ParseColumnType(name string) (ColumnType, bool) {
	t, ok := columnTypesByName[normalizeTypeName(name)]
	return t, ok
}

func normalizeTypeName(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 32
	}
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 32
		}
	}
	return string(b)
}

// MarshalJSON writes column types as their names so the catalog file is
// self-describing.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	name, ok := columnTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown column type %d", int(t))
	}
	return json.Marshal(name)
}

func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := columnTypesByName[name]
	if !ok {
		return fmt.Errorf("unknown column type %q", name)
	}
	*t = parsed
	return nil
}

type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is the schema of one table: an ordered column list and the
// designated primary-key column. Immutable once created.
type Table struct {
	Name       string   `json:"name"`
	Columns    []Column `json:"columns"`
	PrimaryKey string   `json:"primaryKey"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// PrimaryKeyIndex returns the position of the primary-key column, or -1.
func (t Table) PrimaryKeyIndex() int {
	return t.ColumnIndex(t.PrimaryKey)
}
