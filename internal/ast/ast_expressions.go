package ast

import (
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// Expression is the closed set of expression variants:
// *LiteralExpression, *TupleExpression, *ListExpression, *MapExpression,
// *CallExpression, *IdentifierExpression, *CastExpression,
// *UnaryExpression, *BinaryExpression, *MatchExpression,
// *AssignmentExpression, *GroupedExpression, *UnderscoreExpression.
//
// Every expression owns a type-instance slot. Inference fills it once. The
// parser may annotate an expression; the annotation is kept apart from the
// inferred instance so copies of the expression carry it unchanged.
type Expression interface {
	Node
	expressionNode()
	Instance() *typesystem.Instance
	SetInstance(*typesystem.Instance)
	Inferred() bool
	Annotation() *typesystem.Instance
	FromParser() bool
	Annotate(*typesystem.Instance)
}

type typed struct {
	instance   *typesystem.Instance
	annotation *typesystem.Instance
}

// Instance returns the inferred instance, or the annotation before inference.
func (t *typed) Instance() *typesystem.Instance {
	if t.instance != nil {
		return t.instance
	}
	return t.annotation
}

func (t *typed) SetInstance(inst *typesystem.Instance) { t.instance = inst }
func (t *typed) Inferred() bool                        { return t.instance != nil }
func (t *typed) Annotation() *typesystem.Instance      { return t.annotation }
func (t *typed) FromParser() bool                      { return t.annotation != nil }

// Annotate stores an instance supplied by the parser.
func (t *typed) Annotate(inst *typesystem.Instance) { t.annotation = inst }

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	DecLiteral
	FloatLiteral
	StringLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case DecLiteral:
		return "dec"
	case FloatLiteral:
		return "float"
	case StringLiteral:
		return "string"
	default:
		return "int"
	}
}

type LiteralExpression struct {
	typed
	Token token.Token
	Kind  LiteralKind
}

func (e *LiteralExpression) GetToken() token.Token { return e.Token }
func (e *LiteralExpression) expressionNode()       {}

type TupleExpression struct {
	typed
	Token    token.Token
	Elements []Expression
}

func (e *TupleExpression) GetToken() token.Token { return e.Token }
func (e *TupleExpression) expressionNode()       {}

type ListExpression struct {
	typed
	Token    token.Token
	Elements []Expression
}

func (e *ListExpression) GetToken() token.Token { return e.Token }
func (e *ListExpression) expressionNode()       {}

type MapPair struct {
	Key   Expression
	Value Expression
}

type MapExpression struct {
	typed
	Token token.Token
	Pairs []MapPair
}

func (e *MapExpression) GetToken() token.Token { return e.Token }
func (e *MapExpression) expressionNode()       {}

// Argument is one call argument. Name is the zero token for positional arguments.
type Argument struct {
	Name  token.Token
	Value Expression
}

func (a Argument) IsNamed() bool { return a.Name.Lexeme != "" }

// CallKind records what a call expression resolved to.
type CallKind int

const (
	UnresolvedCall CallKind = iota
	FunctionCall
	DefaultConstructorCall
	RecordConstructorCall
)

// CallExpression: f(a, b), Ns.f(a), Just(1), Point(x = 1, y = 2).
// The callee name is the token lexeme.
type CallExpression struct {
	typed
	Token     token.Token
	Namespace string
	Args      []Argument

	Kind     CallKind
	Function *FunctionDeclaration // Resolved function or specialization
	Default  *typesystem.DefaultConstructor
	Record   *typesystem.RecordConstructor
}

func (e *CallExpression) GetToken() token.Token { return e.Token }
func (e *CallExpression) expressionNode()       {}
func (e *CallExpression) Name() string          { return e.Token.Lexeme }

// HasRecordSyntax reports whether any argument is given by name.
func (e *CallExpression) HasRecordSyntax() bool {
	for _, a := range e.Args {
		if a.IsNamed() {
			return true
		}
	}
	return false
}

type IdentifierKind int

const (
	UnresolvedIdentifier IdentifierKind = iota
	VariableIdentifier
	ConstructorIdentifier
)

type IdentifierExpression struct {
	typed
	Token     token.Token
	Namespace string

	Kind        IdentifierKind
	Variable    *VariableDeclaration
	Constructor *typesystem.DefaultConstructor
}

func (e *IdentifierExpression) GetToken() token.Token { return e.Token }
func (e *IdentifierExpression) expressionNode()       {}
func (e *IdentifierExpression) Name() string          { return e.Token.Lexeme }

// CastExpression: cast(T) value
type CastExpression struct {
	typed
	Token    token.Token
	Target   *typesystem.Instance
	Value    Expression
	Function *FunctionDeclaration // nil when the value already has the target type
}

func (e *CastExpression) GetToken() token.Token { return e.Token }
func (e *CastExpression) expressionNode()       {}

type UnaryExpression struct {
	typed
	Token    token.Token
	Operator string
	Operand  Expression
	Function *FunctionDeclaration
}

func (e *UnaryExpression) GetToken() token.Token { return e.Token }
func (e *UnaryExpression) expressionNode()       {}

type BinaryExpression struct {
	typed
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
	Function *FunctionDeclaration
}

func (e *BinaryExpression) GetToken() token.Token { return e.Token }
func (e *BinaryExpression) expressionNode()       {}

// MatchExpression: value is pattern, value is not pattern
type MatchExpression struct {
	typed
	Token   token.Token
	Value   Expression
	Pattern Expression
	Negated bool
}

func (e *MatchExpression) GetToken() token.Token { return e.Token }
func (e *MatchExpression) expressionNode()       {}

type AssignmentExpression struct {
	typed
	Token  token.Token
	Target Expression
	Value  Expression
}

func (e *AssignmentExpression) GetToken() token.Token { return e.Token }
func (e *AssignmentExpression) expressionNode()       {}

type GroupedExpression struct {
	typed
	Token token.Token
	Inner Expression
}

func (e *GroupedExpression) GetToken() token.Token { return e.Token }
func (e *GroupedExpression) expressionNode()       {}

type UnderscoreExpression struct {
	typed
	Token token.Token
}

func (e *UnderscoreExpression) GetToken() token.Token { return e.Token }
func (e *UnderscoreExpression) expressionNode()       {}
