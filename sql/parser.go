package sql

import (
	"strconv"

	"github.com/flatdb/flatdb/core"
)

type StatementType int

const (
	SelectStatementType StatementType = iota
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	CreateTableStatementType
	DropTableStatementType
)

type Statement interface {
	Type() StatementType
}

// SelectStatement covers both single-table selects and two-table
// nested-loop joins; Tables holds one or two names. Columns holds the
// projected column names in request order; empty means every column.
type SelectStatement struct {
	Columns []string
	Tables  []string
	Where   []Condition
}

type InsertStatement struct {
	Table  string
	Values []core.Value
}

type UpdateStatement struct {
	Table string
	Sets  []SetClause
	Where []Condition
}

type SetClause struct {
	Column string
	Value  core.Value
}

type DeleteStatement struct {
	Table string
	Where []Condition
}

type CreateTableStatement struct {
	Table      string
	Columns    []core.Column
	PrimaryKey string
}

type DropTableStatement struct {
	Table string
}

// Operand is the right side of a comparison: either a literal value or a
// column reference (qualified in join predicates).
type Operand struct {
	IsColumn bool
	Column   string
	Value    core.Value
}

type WhereOperator int

const (
	EqualsOperator WhereOperator = iota
	NotEqualsOperator
	LessThanOperator
	GreaterThanOperator
	LessThanOrEqualOperator
	GreaterThanOrEqualOperator
)

func (op WhereOperator) String() string {
	switch op {
	case EqualsOperator:
		return "="
	case NotEqualsOperator:
		return "!="
	case LessThanOperator:
		return "<"
	case GreaterThanOperator:
		return ">"
	case LessThanOrEqualOperator:
		return "<="
	case GreaterThanOrEqualOperator:
		return ">="
	default:
		return "?"
	}
}

// Condition is one conjunct of a WHERE clause. Column may be qualified
// (table.column) in two-table selects. Pos locates the conjunct for
// error reporting.
type Condition struct {
	Column   string
	Operator WhereOperator
	Right    Operand
	Pos      int
}

func (s SelectStatement) Type() StatementType {
	return SelectStatementType
}

func (s InsertStatement) Type() StatementType {
	return InsertStatementType
}

func (s UpdateStatement) Type() StatementType {
	return UpdateStatementType
}

func (s DeleteStatement) Type() StatementType {
	return DeleteStatementType
}

func (s CreateTableStatement) Type() StatementType {
	return CreateTableStatementType
}

func (s DropTableStatement) Type() StatementType {
	return DropTableStatementType
}

type Parser struct {
	lexer *Lexer
}

func NewParser(text string) *Parser {
	return &Parser{lexer: NewLexer(text)}
}

func (parser *Parser) Parse() (Statement, error) {
	token := parser.lexer.NextToken()
	var statement Statement
	var err error

	switch token.Type {
	case Select:
		statement, err = ParseSelect(parser)
	case Insert:
		statement, err = ParseInsert(parser)
	case Update:
		statement, err = ParseUpdate(parser)
	case Delete:
		statement, err = ParseDelete(parser)
	case Create:
		statement, err = ParseCreate(parser)
	case Drop:
		statement, err = ParseDrop(parser)
	case EOF:
		return nil, core.NewSyntaxError(token.Pos, "empty statement")
	default:
		return nil, core.NewSyntaxError(token.Pos, "unknown statement %q", token.Value)
	}
	if err != nil {
		return nil, err
	}

	token = parser.lexer.NextToken()
	if token.Type != EOF {
		return nil, core.NewSyntaxError(token.Pos, "unexpected %q after statement", token.Value)
	}
	return statement, nil
}

func ParseSelect(parser *Parser) (Statement, error) {
	var statement SelectStatement

	token := parser.lexer.NextToken()
	switch token.Type {
	case Wildcard:
	case Identifier:
		statement.Columns = append(statement.Columns, token.Value)
		for parser.lexer.PeekToken().Type == Comma {
			parser.lexer.NextToken() // consume comma
			token = parser.lexer.NextToken()
			if token.Type != Identifier {
				return nil, core.NewSyntaxError(token.Pos, "expected column name, got %q", token.Value)
			}
			statement.Columns = append(statement.Columns, token.Value)
		}
	default:
		return nil, core.NewSyntaxError(token.Pos, "expected '*' or column list after SELECT, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != From {
		return nil, core.NewSyntaxError(token.Pos, "expected FROM, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}
	statement.Tables = append(statement.Tables, token.Value)

	if parser.lexer.PeekToken().Type == Comma {
		parser.lexer.NextToken() // consume comma
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, core.NewSyntaxError(token.Pos, "expected second table name, got %q", token.Value)
		}
		statement.Tables = append(statement.Tables, token.Value)
	}

	if parser.lexer.PeekToken().Type == Where {
		parser.lexer.NextToken() // consume WHERE
		where, err := ParseWhere(parser)
		if err != nil {
			return nil, err
		}
		statement.Where = where
	}

	return statement, nil
}

func ParseInsert(parser *Parser) (Statement, error) {
	var statement InsertStatement

	token := parser.lexer.NextToken()
	if token.Type != Into {
		return nil, core.NewSyntaxError(token.Pos, "expected INTO, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}
	statement.Table = token.Value

	token = parser.lexer.NextToken()
	if token.Type != Values {
		return nil, core.NewSyntaxError(token.Pos, "expected VALUES, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != ParenOpen {
		return nil, core.NewSyntaxError(token.Pos, "expected '(', got %q", token.Value)
	}

	for {
		token = parser.lexer.NextToken()
		value, err := parseLiteral(token)
		if err != nil {
			return nil, err
		}
		statement.Values = append(statement.Values, value)

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		}
		if token.Type == ParenClose {
			break
		}
		return nil, core.NewSyntaxError(token.Pos, "expected ',' or ')', got %q", token.Value)
	}

	return statement, nil
}

func ParseUpdate(parser *Parser) (Statement, error) {
	var statement UpdateStatement

	token := parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}
	statement.Table = token.Value

	token = parser.lexer.NextToken()
	if token.Type != Set {
		return nil, core.NewSyntaxError(token.Pos, "expected SET, got %q", token.Value)
	}

	for {
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, core.NewSyntaxError(token.Pos, "expected column name, got %q", token.Value)
		}
		column := token.Value

		token = parser.lexer.NextToken()
		if token.Type != Equals {
			return nil, core.NewSyntaxError(token.Pos, "expected '=', got %q", token.Value)
		}

		token = parser.lexer.NextToken()
		value, err := parseLiteral(token)
		if err != nil {
			return nil, err
		}
		statement.Sets = append(statement.Sets, SetClause{Column: column, Value: value})

		if parser.lexer.PeekToken().Type != Comma {
			break
		}
		parser.lexer.NextToken() // consume comma
	}

	token = parser.lexer.NextToken()
	if token.Type != Where {
		return nil, core.NewSyntaxError(token.Pos, "UPDATE requires a WHERE clause")
	}

	where, err := ParseWhere(parser)
	if err != nil {
		return nil, err
	}
	statement.Where = where

	return statement, nil
}

func ParseDelete(parser *Parser) (Statement, error) {
	var statement DeleteStatement

	token := parser.lexer.NextToken()
	if token.Type != From {
		return nil, core.NewSyntaxError(token.Pos, "expected FROM, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}
	statement.Table = token.Value

	token = parser.lexer.NextToken()
	if token.Type != Where {
		return nil, core.NewSyntaxError(token.Pos, "DELETE requires a WHERE clause")
	}

	where, err := ParseWhere(parser)
	if err != nil {
		return nil, err
	}
	statement.Where = where

	return statement, nil
}

func ParseCreate(parser *Parser) (Statement, error) {
	var statement CreateTableStatement

	token := parser.lexer.NextToken()
	if token.Type != TableKeyword {
		return nil, core.NewSyntaxError(token.Pos, "expected TABLE, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}
	statement.Table = token.Value

	token = parser.lexer.NextToken()
	if token.Type != ParenOpen {
		return nil, core.NewSyntaxError(token.Pos, "expected '(', got %q", token.Value)
	}

	for {
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, core.NewSyntaxError(token.Pos, "expected column name, got %q", token.Value)
		}
		name := token.Value

		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, core.NewSyntaxError(token.Pos, "expected column type, got %q", token.Value)
		}
		columnType, ok := core.ParseColumnType(token.Value)
		if !ok {
			return nil, core.NewSyntaxError(token.Pos, "unknown column type %q", token.Value)
		}
		statement.Columns = append(statement.Columns, core.Column{Name: name, Type: columnType})

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		}
		if token.Type == ParenClose {
			break
		}
		return nil, core.NewSyntaxError(token.Pos, "expected ',' or ')', got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != PrimaryKey {
		return nil, core.NewSyntaxError(token.Pos, "expected PRIMARY KEY, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected primary key column, got %q", token.Value)
	}
	statement.PrimaryKey = token.Value

	return statement, nil
}

func ParseDrop(parser *Parser) (Statement, error) {
	token := parser.lexer.NextToken()
	if token.Type != TableKeyword {
		return nil, core.NewSyntaxError(token.Pos, "expected TABLE, got %q", token.Value)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, core.NewSyntaxError(token.Pos, "expected table name, got %q", token.Value)
	}

	return DropTableStatement{Table: token.Value}, nil
}

// ParseWhere consumes one or more comparisons joined by AND. The WHERE
// keyword must already be consumed.
func ParseWhere(parser *Parser) ([]Condition, error) {
	var conditions []Condition

	for {
		token := parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, core.NewSyntaxError(token.Pos, "expected column name, got %q", token.Value)
		}
		condition := Condition{Column: token.Value, Pos: token.Pos}

		token = parser.lexer.NextToken()
		operator, ok := whereOperatorFor(token.Type)
		if !ok {
			return nil, core.NewSyntaxError(token.Pos, "expected comparison operator, got %q", token.Value)
		}
		condition.Operator = operator

		token = parser.lexer.NextToken()
		if token.Type == Identifier {
			condition.Right = Operand{IsColumn: true, Column: token.Value}
		} else {
			value, err := parseLiteral(token)
			if err != nil {
				return nil, err
			}
			condition.Right = Operand{Value: value}
		}

		conditions = append(conditions, condition)

		if parser.lexer.PeekToken().Type != And {
			break
		}
		parser.lexer.NextToken() // consume AND
	}

	return conditions, nil
}

func whereOperatorFor(t TokenType) (WhereOperator, bool) {
	switch t {
	case Equals:
		return EqualsOperator, true
	case NotEquals:
		return NotEqualsOperator, true
	case LessThan:
		return LessThanOperator, true
	case GreaterThan:
		return GreaterThanOperator, true
	case LessThanOrEqual:
		return LessThanOrEqualOperator, true
	case GreaterThanOrEqual:
		return GreaterThanOrEqualOperator, true
	default:
		return 0, false
	}
}

func parseLiteral(token Token) (core.Value, error) {
	switch token.Type {
	case String:
		return core.NewString(token.Value), nil
	case Int:
		i, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return core.Value{}, core.NewSyntaxError(token.Pos, "invalid integer %q", token.Value)
		}
		return core.NewInt(i), nil
	case Float:
		f, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return core.Value{}, core.NewSyntaxError(token.Pos, "invalid float %q", token.Value)
		}
		return core.NewFloat(f), nil
	case True:
		return core.NewBool(true), nil
	case False:
		return core.NewBool(false), nil
	default:
		return core.Value{}, core.NewSyntaxError(token.Pos, "expected literal value, got %q", token.Value)
	}
}
