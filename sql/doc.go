// Package sql tokenizes and parses flatdb's statement grammar.
//
// The lexer walks the statement text byte by byte and produces
// position-tagged tokens; the parser is a small recursive-descent pass
// producing one typed statement variant per grammar production:
//
//   - CREATE TABLE name (col type, ...) PRIMARY KEY col
//   - DROP TABLE name
//   - INSERT INTO name VALUES (v, ...)
//   - SELECT {* | col, ...} FROM name [WHERE col op value [AND ...]]
//   - SELECT {* | col, ...} FROM a, b WHERE a.col = b.col [AND ...]
//   - UPDATE name SET col = value [, ...] WHERE col op value [AND ...]
//   - DELETE FROM name WHERE col op value [AND ...]
//
// Keywords are case-insensitive. Comparison operators are =, !=, <>, <,
// >, <= and >=, combined only by AND. Malformed text fails with a
// *core.Error of kind SyntaxError carrying the byte offset of the
// offending token.
package sql
