package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT   TokenType = "IDENT"
	INTEGER TokenType = "INTEGER"
	DECIMAL TokenType = "DECIMAL"
	FLOAT   TokenType = "FLOAT"
	STRING  TokenType = "STRING"

	UNDERSCORE TokenType = "_"
	OPERATOR   TokenType = "OPERATOR"

	// Keywords
	IMPORT    TokenType = "IMPORT"
	NAMESPACE TokenType = "NAMESPACE"
	TYPE      TokenType = "TYPE"
	DEF       TokenType = "DEF"
	VAR       TokenType = "VAR"
	VAL       TokenType = "VAL"
	WHILE     TokenType = "WHILE"
	IF        TokenType = "IF"
	ELIF      TokenType = "ELIF"
	ELSE      TokenType = "ELSE"
	BREAK     TokenType = "BREAK"
	CONTINUE  TokenType = "CONTINUE"
	PASS      TokenType = "PASS"
	RETURN    TokenType = "RETURN"
	IS        TokenType = "IS"
	CAST      TokenType = "CAST"
)

// Token is a lexeme together with the position it was read from.
// Diagnostics quote the lexeme and position verbatim.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// New builds a token at the given position.
func New(typ TokenType, lexeme string, line, column int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line, Column: column}
}

// Synthetic builds a position-less token, used for declarations the
// compiler materialises itself (built-in programs, generated instances).
func Synthetic(typ TokenType, lexeme string) Token {
	return Token{Type: typ, Lexeme: lexeme}
}

func (t Token) IsSynthetic() bool {
	return t.Line == 0 && t.Column == 0
}

func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Type, t.Lexeme, t.Position())
}
