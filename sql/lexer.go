package sql

// Token is a lexical unit of statement text. Pos is the byte offset of
// the token's first character, used for error reporting.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

type TokenType int

const (
	Identifier TokenType = iota
	String
	Int
	Float
	True
	False
	Wildcard
	Comma
	ParenOpen
	ParenClose
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	And
	Select
	From
	Where
	Create
	Drop
	TableKeyword
	PrimaryKey
	Insert
	Into
	Values
	Update
	Set
	Delete
	EOF
	Unknown
)

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case Float:
		return "Float(" + token.Value + ")"
	case True:
		return "True"
	case False:
		return "False"
	case Wildcard:
		return "Wildcard"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case Equals:
		return "Equals"
	case NotEquals:
		return "NotEquals"
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case And:
		return "And"
	case Select:
		return "Select"
	case From:
		return "From"
	case Where:
		return "Where"
	case Create:
		return "Create"
	case Drop:
		return "Drop"
	case TableKeyword:
		return "Table"
	case PrimaryKey:
		return "PrimaryKey"
	case Insert:
		return "Insert"
	case Into:
		return "Into"
	case Values:
		return "Values"
	case Update:
		return "Update"
	case Set:
		return "Set"
	case Delete:
		return "Delete"
	case EOF:
		return "EOF"
	default:
		return "Unknown(" + token.Value + ")"
	}
}

type Lexer struct {
	text         string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(text string) *Lexer {
	lexer := &Lexer{text: text}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.text) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.text[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()

	pos := lexer.position
	var token Token

	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: string(lexer.ch), Pos: pos}
	case '(':
		token = Token{Type: ParenOpen, Value: string(lexer.ch), Pos: pos}
	case ')':
		token = Token{Type: ParenClose, Value: string(lexer.ch), Pos: pos}
	case '*':
		token = Token{Type: Wildcard, Value: string(lexer.ch), Pos: pos}
	case 0:
		token = Token{Type: EOF, Value: "", Pos: pos}
	case '\'':
		return Token{Type: String, Value: lexer.readString(), Pos: pos}
	default:
		if isOperator(lexer.ch) {
			operator := lexer.readOperator()
			switch operator {
			case "=":
				return Token{Type: Equals, Value: operator, Pos: pos}
			case "!=", "<>":
				return Token{Type: NotEquals, Value: operator, Pos: pos}
			case "<":
				return Token{Type: LessThan, Value: operator, Pos: pos}
			case ">":
				return Token{Type: GreaterThan, Value: operator, Pos: pos}
			case "<=":
				return Token{Type: LessThanOrEqual, Value: operator, Pos: pos}
			case ">=":
				return Token{Type: GreaterThanOrEqual, Value: operator, Pos: pos}
			default:
				return Token{Type: Unknown, Value: operator, Pos: pos}
			}
		} else if isDigit(lexer.ch) || (lexer.ch == '-' && isDigit(lexer.peekChar())) {
			return lexer.readNumberToken(pos)
		} else if isAlphaNumeric(lexer.ch) {
			literal := lexer.readIdentifier()
			if toUpper(literal) == "PRIMARY" {
				keyPos := lexer.position
				lexer.skipWhitespace()
				next := lexer.readIdentifier()
				if toUpper(next) == "KEY" {
					return Token{Type: PrimaryKey, Value: "PRIMARY KEY", Pos: pos}
				}
				return Token{Type: Unknown, Value: literal + " " + next, Pos: keyPos}
			}
			return Token{Type: lookupIdentifier(literal), Value: literal, Pos: pos}
		} else {
			token = Token{Type: Unknown, Value: string(lexer.ch), Pos: pos}
		}
	}

	lexer.readChar()
	return token
}

// PeekToken returns the next token without consuming it.
func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.text) {
		return 0
	}
	return lexer.text[lexer.readPosition]
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isAlphaNumeric(lexer.ch) {
		lexer.readChar()
	}
	return lexer.text[position:lexer.position]
}

func (lexer *Lexer) readString() string {
	lexer.readChar() // skip opening quote
	position := lexer.position
	for lexer.ch != '\'' && lexer.ch != 0 {
		lexer.readChar()
	}
	str := lexer.text[position:lexer.position]
	lexer.readChar() // skip closing quote
	return str
}

func (lexer *Lexer) readNumberToken(pos int) Token {
	start := lexer.position
	if lexer.ch == '-' {
		lexer.readChar()
	}
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	if lexer.ch == '.' && isDigit(lexer.peekChar()) {
		lexer.readChar()
		for isDigit(lexer.ch) {
			lexer.readChar()
		}
		return Token{Type: Float, Value: lexer.text[start:lexer.position], Pos: pos}
	}
	return Token{Type: Int, Value: lexer.text[start:lexer.position], Pos: pos}
}

func (lexer *Lexer) readOperator() string {
	position := lexer.position
	for isOperator(lexer.ch) {
		lexer.readChar()
	}
	return lexer.text[position:lexer.position]
}

// Identifiers may contain '.': qualified column names in two-table
// selects lex as a single token and split in the parser.
func isAlphaNumeric(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '.' || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func lookupIdentifier(id string) TokenType {
	switch toUpper(id) {
	case "SELECT":
		return Select
	case "FROM":
		return From
	case "WHERE":
		return Where
	case "AND":
		return And
	case "CREATE":
		return Create
	case "DROP":
		return Drop
	case "TABLE":
		return TableKeyword
	case "INSERT":
		return Insert
	case "INTO":
		return Into
	case "VALUES":
		return Values
	case "UPDATE":
		return Update
	case "SET":
		return Set
	case "DELETE":
		return Delete
	case "TRUE":
		return True
	case "FALSE":
		return False
	default:
		return Identifier
	}
}

// toUpper converts a string to uppercase without allocating for strings
// that are already uppercase ASCII.
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}
