package ast

import "github.com/ntwalibas/avalon-sub000/internal/token"

// Statement is the closed set of statement variants:
// *WhileStatement, *IfStatement, *BreakStatement, *ContinueStatement,
// *PassStatement, *ReturnStatement, *ExpressionStatement, *BlockStatement.
type Statement interface {
	Node
	statementNode()
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *Block
}

func (s *WhileStatement) GetToken() token.Token { return s.Token }
func (s *WhileStatement) statementNode()        {}

type ElifBranch struct {
	Token     token.Token
	Condition Expression
	Body      *Block
}

type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      *Block
	Elifs     []*ElifBranch
	Else      *Block // nil when there is no else branch
}

func (s *IfStatement) GetToken() token.Token { return s.Token }
func (s *IfStatement) statementNode()        {}

type BreakStatement struct {
	Token token.Token
}

func (s *BreakStatement) GetToken() token.Token { return s.Token }
func (s *BreakStatement) statementNode()        {}

type ContinueStatement struct {
	Token token.Token
}

func (s *ContinueStatement) GetToken() token.Token { return s.Token }
func (s *ContinueStatement) statementNode()        {}

type PassStatement struct {
	Token token.Token
}

func (s *PassStatement) GetToken() token.Token { return s.Token }
func (s *PassStatement) statementNode()        {}

// ReturnStatement: return [expr]. Value is nil for a bare return.
type ReturnStatement struct {
	Token token.Token
	Value Expression
}

func (s *ReturnStatement) GetToken() token.Token { return s.Token }
func (s *ReturnStatement) statementNode()        {}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (s *ExpressionStatement) GetToken() token.Token { return s.Token }
func (s *ExpressionStatement) statementNode()        {}

type BlockStatement struct {
	Token token.Token
	Block *Block
}

func (s *BlockStatement) GetToken() token.Token { return s.Token }
func (s *BlockStatement) statementNode()        {}
