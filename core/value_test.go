package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name     string
		left     Value
		right    Value
		expected int
	}{
		{"int less", NewInt(1), NewInt(2), -1},
		{"int equal", NewInt(5), NewInt(5), 0},
		{"int greater", NewInt(9), NewInt(2), 1},
		{"int vs float", NewInt(2), NewFloat(2.5), -1},
		{"float vs int equal", NewFloat(3.0), NewInt(3), 0},
		{"string order", NewString("apple"), NewString("banana"), -1},
		{"string equal", NewString("a"), NewString("a"), 0},
		{"bool order", NewBool(false), NewBool(true), -1},
		{"bool equal", NewBool(true), NewBool(true), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, err := tt.left.Compare(tt.right)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if cmp != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, cmp)
			}
		})
	}
}

func TestValueCompareMismatchedTypes(t *testing.T) {
	if _, err := NewString("a").Compare(NewInt(1)); err == nil {
		t.Error("Expected error comparing String to Int")
	}
	if _, err := NewBool(true).Compare(NewFloat(1.0)); err == nil {
		t.Error("Expected error comparing Bool to Float")
	}
}

func TestValueConformsTo(t *testing.T) {
	if !NewInt(1).ConformsTo(IntType) {
		t.Error("Int should conform to Int column")
	}
	if !NewInt(1).ConformsTo(FloatType) {
		t.Error("Int should conform to Float column")
	}
	if NewFloat(1.5).ConformsTo(IntType) {
		t.Error("Float should not conform to Int column")
	}
	if NewString("x").ConformsTo(BoolType) {
		t.Error("String should not conform to Bool column")
	}

	widened := NewInt(2).Widen(FloatType)
	if widened.Type != FloatType || widened.Flt64 != 2.0 {
		t.Errorf("Expected Float 2.0, got %v", widened)
	}
}

func TestRowRoundTrip(t *testing.T) {
	table := Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: IntType},
			{Name: "name", Type: StringType},
			{Name: "score", Type: FloatType},
			{Name: "active", Type: BoolType},
		},
		PrimaryKey: "id",
	}
	row := Row{NewInt(1), NewString("Alice"), NewFloat(9.5), NewBool(true)}

	object, err := EncodeRow(table, row)
	if err != nil {
		t.Fatalf("EncodeRow failed: %v", err)
	}

	data, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	decoded, err := DecodeRow(table, raw)
	if err != nil {
		t.Fatalf("DecodeRow failed: %v", err)
	}
	if !reflect.DeepEqual(row, decoded) {
		t.Errorf("Round trip mismatch: %v != %v", row, decoded)
	}
}

func TestDecodeRowRejectsBadData(t *testing.T) {
	table := Table{
		Name:       "users",
		Columns:    []Column{{Name: "id", Type: IntType}},
		PrimaryKey: "id",
	}

	if _, err := DecodeRow(table, map[string]json.RawMessage{"id": json.RawMessage(`"oops"`)}); err == nil {
		t.Error("Expected error for String value in Int column")
	}
	if _, err := DecodeRow(table, map[string]json.RawMessage{}); err == nil {
		t.Error("Expected error for missing column")
	}
	if _, err := DecodeRow(table, map[string]json.RawMessage{"id": json.RawMessage(`1`), "extra": json.RawMessage(`2`)}); err == nil {
		t.Error("Expected error for unknown column")
	}
}

func TestColumnTypeJSON(t *testing.T) {
	data, err := json.Marshal(Column{Name: "id", Type: IntType})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"name":"id","type":"Int"}` {
		t.Errorf("Unexpected encoding: %s", data)
	}

	var column Column
	if err := json.Unmarshal(data, &column); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if column.Type != IntType {
		t.Errorf("Expected IntType, got %v", column.Type)
	}

	if err := json.Unmarshal([]byte(`{"name":"x","type":"Blob"}`), &column); err == nil {
		t.Error("Expected error for unknown type name")
	}
}

func TestParseColumnType(t *testing.T) {
	for _, name := range []string{"Int", "INT", "int"} {
		if parsed, ok := ParseColumnType(name); !ok || parsed != IntType {
			t.Errorf("ParseColumnType(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := ParseColumnType("Decimal"); ok {
		t.Error("Expected Decimal to be rejected")
	}
}
