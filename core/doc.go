// Package core provides the types shared by every flatdb component.
//
// The package defines table schemas (Table, Column, ColumnType), the
// closed tagged-union scalar Value and the Row it composes, and the
// typed error taxonomy every operation reports through.
//
// # Column Types
//
// Supported column types:
//   - StringType: character data
//   - IntType: 64-bit integers
//   - FloatType: 64-bit floating point (Int values widen on store)
//   - BoolType: boolean values
//
// # Table Definition
//
//	table := core.Table{
//	    Name: "users",
//	    Columns: []core.Column{
//	        {Name: "id", Type: core.IntType},
//	        {Name: "name", Type: core.StringType},
//	    },
//	    PrimaryKey: "id",
//	}
//
// # Errors
//
// Every failure is a *core.Error carrying one of four kinds: SyntaxError,
// SchemaError, ConstraintError or IOError. Callers match kinds with
// core.IsKind or errors.As; syntax errors carry the byte offset of the
// offending token.
package core
