package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a closed tagged-union scalar. The Type field selects which
// payload is meaningful; the others are zero.
type Value struct {
	Type  ColumnType
	Str   string
	Int64 int64
	Flt64 float64
	Bool  bool
}

func NewString(s string) Value {
	return Value{Type: StringType, Str: s}
}

func NewInt(i int64) Value {
	return Value{Type: IntType, Int64: i}
}

func NewFloat(f float64) Value {
	return Value{Type: FloatType, Flt64: f}
}

func NewBool(b bool) Value {
	return Value{Type: BoolType, Bool: b}
}

// ConformsTo reports whether the value can be stored in a column of the
// given type. Int conforms to Float columns; everything else is strict.
func (v Value) ConformsTo(t ColumnType) bool {
	if v.Type == t {
		return true
	}
	return v.Type == IntType && t == FloatType
}

// Widen converts the value to the column type it is being stored under.
// The only widening performed is Int to Float.
func (v Value) Widen(t ColumnType) Value {
	if v.Type == IntType && t == FloatType {
		return NewFloat(float64(v.Int64))
	}
	return v
}

// Equal reports equality of two values, comparing Int and Float
// numerically across types.
func (v Value) Equal(other Value) bool {
	cmp, err := v.Compare(other)
	return err == nil && cmp == 0
}

// Compare orders two values: -1, 0 or 1. Strings order lexicographically,
// Int and Float numerically (mixed numeric comparison allowed), Bool only
// distinguishes equal from unequal ordering-wise (false < true). Comparing
// across non-numeric types is an error.
func (v Value) Compare(other Value) (int, error) {
	if v.isNumeric() && other.isNumeric() {
		a, b := v.asFloat(), other.asFloat()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if v.Type != other.Type {
		return 0, fmt.Errorf("cannot compare %s to %s", v.Type, other.Type)
	}

	switch v.Type {
	case StringType:
		return strings.Compare(v.Str, other.Str), nil
	case BoolType:
		switch {
		case v.Bool == other.Bool:
			return 0, nil
		case !v.Bool:
			return -1, nil
		default:
			return 1, nil
		}
	default:
		return 0, fmt.Errorf("cannot compare %s values", v.Type)
	}
}

func (v Value) isNumeric() bool {
	return v.Type == IntType || v.Type == FloatType
}

func (v Value) asFloat() float64 {
	if v.Type == IntType {
		return float64(v.Int64)
	}
	return v.Flt64
}

// Key returns a map-key representation, used by the primary-key index.
// Distinct values of the same column type always produce distinct keys.
func (v Value) Key() string {
	switch v.Type {
	case IntType:
		return strconv.FormatInt(v.Int64, 10)
	case FloatType:
		return strconv.FormatFloat(v.Flt64, 'g', -1, 64)
	case BoolType:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

func (v Value) String() string {
	switch v.Type {
	case IntType:
		return strconv.FormatInt(v.Int64, 10)
	case FloatType:
		return strconv.FormatFloat(v.Flt64, 'g', -1, 64)
	case BoolType:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case IntType:
		return json.Marshal(v.Int64)
	case FloatType:
		return json.Marshal(v.Flt64)
	case BoolType:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// DecodeValue converts a raw JSON scalar into a Value of the given column
// type, rejecting anything that does not conform.
func DecodeValue(raw json.RawMessage, t ColumnType) (Value, error) {
	switch t {
	case IntType:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Value{}, fmt.Errorf("expected Int, got %s", raw)
		}
		return NewInt(i), nil
	case FloatType:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Value{}, fmt.Errorf("expected Float, got %s", raw)
		}
		return NewFloat(f), nil
	case BoolType:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, fmt.Errorf("expected Bool, got %s", raw)
		}
		return NewBool(b), nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("expected String, got %s", raw)
		}
		return NewString(s), nil
	}
}

// Row holds one value per schema column, in schema column order.
type Row []Value

// EncodeRow serializes a row as a column-keyed JSON object.
func EncodeRow(table Table, row Row) (map[string]Value, error) {
	if len(row) != len(table.Columns) {
		return nil, fmt.Errorf("row has %d values, table %s has %d columns",
			len(row), table.Name, len(table.Columns))
	}
	object := make(map[string]Value, len(row))
	for i, col := range table.Columns {
		object[col.Name] = row[i]
	}
	return object, nil
}

// DecodeRow rebuilds a typed row from a column-keyed JSON object,
// validating that every schema column is present, no extras exist, and
// every value conforms to its column type.
func DecodeRow(table Table, object map[string]json.RawMessage) (Row, error) {
	if len(object) != len(table.Columns) {
		for name := range object {
			if table.ColumnIndex(name) < 0 {
				return nil, fmt.Errorf("unknown column %q in table %s", name, table.Name)
			}
		}
	}
	row := make(Row, len(table.Columns))
	for i, col := range table.Columns {
		raw, ok := object[col.Name]
		if !ok {
			return nil, fmt.Errorf("missing column %q in table %s", col.Name, table.Name)
		}
		value, err := DecodeValue(raw, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		row[i] = value
	}
	return row, nil
}
